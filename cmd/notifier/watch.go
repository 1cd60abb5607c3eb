package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/petrescue/admin-notifier/internal/console"
	"github.com/petrescue/admin-notifier/internal/notifysync"
	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/enums"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

const watchHelp = `commands:
  open <desktop|mobile>      open a dropdown and load the list
  toggle <desktop|mobile>    click the bell
  esc <desktop|mobile>       close with Escape
  outside <desktop|mobile>   close with a click outside
  read <id>                  mark one notification read
  read-all <desktop|mobile>  mark everything read and close that dropdown
  refresh                    poll now
  quit                       stop watching`

var errQuit = errors.New("quit")

type watchCommand struct {
	verb         string
	presentation enums.Presentation
	id           adminapi.ID
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for notifications and drive the dropdowns from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = a.cfg.Notifier.PollInterval
			}
			return a.watch(cmd.Context(), interval, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (defaults to PETRESCUE_NOTIFIER_POLL_INTERVAL)")
	return cmd
}

func (a *app) watch(ctx context.Context, interval time.Duration, in io.Reader, out, errOut io.Writer) error {
	registry := prometheus.NewRegistry()
	synchronizer, err := notifysync.NewSynchronizer(notifysync.Params{
		Logger:     a.logg,
		Client:     a.client,
		Renderers:  console.Renderers(out),
		Metrics:    metrics.NewSyncMetrics(registry),
		JobMetrics: metrics.NewJobMetrics(registry),
		Interval:   interval,
	})
	if err != nil {
		return err
	}

	ctx = a.logg.WithFields(ctx, map[string]any{
		"base_url": a.cfg.Notifier.BaseURL,
		"interval": interval.String(),
	})
	if err := synchronizer.Start(ctx); err != nil {
		return err
	}
	defer synchronizer.Stop()

	fmt.Fprintln(out, watchHelp)

	group, groupCtx := errgroup.WithContext(ctx)
	if addr := a.cfg.Notifier.MetricsAddr; addr != "" {
		server := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		group.Go(func() error {
			a.logg.Info(a.logg.WithField(groupCtx, "metrics_addr", addr), "serving synchronizer metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	group.Go(func() error {
		err := readCommands(groupCtx, in, func(line string) error {
			command, err := parseWatchCommand(line)
			if err != nil {
				fmt.Fprintln(out, err)
				return nil
			}
			return dispatch(groupCtx, synchronizer, command, out, errOut)
		})
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return errQuit
		}
		return err
	})

	err = group.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readCommands feeds non-empty stdin lines to handle until ctx ends, input is
// exhausted (io.EOF) or handle fails.
func readCommands(ctx context.Context, in io.Reader, handle func(string) error) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
			return
		}
		scanErr <- io.EOF
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line := <-lines:
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := handle(line); err != nil {
				return err
			}
		}
	}
}

func parseWatchCommand(line string) (watchCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return watchCommand{}, fmt.Errorf("empty command")
	}
	command := watchCommand{verb: strings.ToLower(fields[0])}
	switch command.verb {
	case "quit", "exit", "refresh", "help":
		if len(fields) != 1 {
			return watchCommand{}, fmt.Errorf("%s takes no arguments", command.verb)
		}
		return command, nil
	case "read":
		if len(fields) != 2 {
			return watchCommand{}, fmt.Errorf("usage: read <id>")
		}
		command.id = adminapi.ID(fields[1])
		return command, nil
	case "open", "toggle", "esc", "outside", "read-all":
		if len(fields) != 2 {
			return watchCommand{}, fmt.Errorf("usage: %s <desktop|mobile>", command.verb)
		}
		p, err := enums.ParsePresentation(fields[1])
		if err != nil {
			return watchCommand{}, err
		}
		command.presentation = p
		return command, nil
	default:
		return watchCommand{}, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}

func dispatch(ctx context.Context, synchronizer *notifysync.Synchronizer, command watchCommand, out, errOut io.Writer) error {
	var err error
	switch command.verb {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(out, watchHelp)
	case "refresh":
		err = synchronizer.Tick(ctx)
	case "open":
		err = synchronizer.Open(ctx, command.presentation)
	case "toggle":
		err = synchronizer.Toggle(ctx, command.presentation)
	case "esc":
		err = synchronizer.Close(command.presentation, notifysync.CloseEscape)
	case "outside":
		err = synchronizer.Close(command.presentation, notifysync.CloseOutsideClick)
	case "read":
		err = synchronizer.MarkRead(ctx, command.id)
	case "read-all":
		err = synchronizer.MarkAllRead(ctx, command.presentation)
	}
	if err != nil {
		// Dropdowns keep their last good state on failure.
		fmt.Fprintf(errOut, "%s: %v\n", command.verb, err)
	}
	return nil
}
