package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrescue/admin-notifier/internal/notifysync"
	"github.com/petrescue/admin-notifier/pkg/adminapi"
)

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the unread notification count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, err := a.client.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var unreadOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.List(cmd.Context())
			if err != nil {
				return err
			}
			printNotifications(cmd, items, time.Now(), unreadOnly)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only show unread notifications")
	return cmd
}

func printNotifications(cmd *cobra.Command, items []adminapi.Notification, now time.Time, unreadOnly bool) {
	out := cmd.OutOrStdout()
	shown := 0
	for _, n := range items {
		if unreadOnly && n.IsRead {
			continue
		}
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-6s %-12s %-5s %s\n", marker, n.ID, n.Type.Label(), notifysync.RelativeLabel(now, n.Timestamp), n.Message)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No notifications yet")
	}
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.MarkRead(cmd.Context(), adminapi.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %s read\n", args[0])
			return nil
		},
	}
}

func newReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirmation, err := a.client.MarkAllRead(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d notifications read\n", confirmation.Updated)
			return nil
		},
	}
}
