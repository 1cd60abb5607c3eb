package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

// app carries what every subcommand needs once configuration has loaded.
type app struct {
	cfg    *config.Config
	logg   *logger.Logger
	client *adminapi.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var baseURL string

	root := &cobra.Command{
		Use:   "notifier",
		Short: "Keep the PetRescue admin notification dropdown in sync",
		Long: `notifier talks to the rescue site's admin notification endpoints.

Use "watch" to run the polling synchronizer with desktop and mobile dropdowns
rendered to the terminal, or the one-shot commands to inspect and acknowledge
notifications directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(baseURL)
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "rescue site base url (overrides "+config.EnvNotifierBaseURL+")")

	root.AddCommand(
		newWatchCmd(a),
		newCountCmd(a),
		newListCmd(a),
		newReadCmd(a),
		newReadAllCmd(a),
	)
	return root
}

func (a *app) setup(baseURL string) error {
	logg := logger.New(logger.Options{ServiceName: "notifier", Output: os.Stderr})
	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.Notifier.BaseURL = baseURL
	}

	a.cfg = cfg
	a.logg = logger.New(logger.Options{
		ServiceName: "notifier",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	jar, err := adminapi.NewSessionJar(cfg.Notifier.BaseURL, cfg.Notifier.SessionID, cfg.Notifier.CSRFToken)
	if err != nil {
		return fmt.Errorf("session cookies: %w", err)
	}
	opts := []adminapi.Option{
		adminapi.WithHTTPClient(&http.Client{Jar: jar}),
		adminapi.WithTimeout(cfg.Notifier.RequestTimeout),
	}
	if cfg.Notifier.CSRFToken != "" {
		opts = append(opts, adminapi.WithTokenSource(adminapi.StaticToken(cfg.Notifier.CSRFToken)))
	}
	client, err := adminapi.NewClient(cfg.Notifier.BaseURL, opts...)
	if err != nil {
		return fmt.Errorf("notification client: %w", err)
	}
	a.client = client
	return nil
}
