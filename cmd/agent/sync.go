package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/connectivity"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and drive the sync queue",
}

type syncStatus struct {
	Remote    string     `json:"remote"`
	Online    bool       `json:"online"`
	LastProbe *time.Time `json:"last_probe,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Pending   int        `json:"pending"`
	Dead      int        `json:"dead"`
}

func newSyncStatus(conn connectivity.Status, pending, dead int) syncStatus {
	s := syncStatus{
		Remote:  app.cfg.RemoteBaseURL,
		Online:  conn.Online,
		Pending: pending,
		Dead:    dead,
	}
	if !conn.LastProbe.IsZero() {
		s.LastProbe = &conn.LastProbe
	}
	if conn.LastError != nil {
		s.LastError = conn.LastError.Error()
	}
	return s
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reachability and the number of writes waiting to sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		pending, err := app.coordinator.Pending(ctx)
		if err != nil {
			return err
		}
		dead, err := app.queue.Dead(ctx)
		if err != nil {
			return err
		}

		return printJSON(cmd, newSyncStatus(app.monitor.Status(), pending, len(dead)))
	},
}

var syncDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Replay queued writes now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		report, err := app.coordinator.ProcessSyncQueue(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var syncDeadCmd = &cobra.Command{
	Use:   "dead",
	Short: "List writes that were given up on after too many failed replays",
	RunE: func(cmd *cobra.Command, args []string) error {
		dead, err := app.queue.Dead(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, dead)
	},
}

var syncReviveCmd = &cobra.Command{
	Use:   "revive <seq>",
	Short: "Return a dead write to the tail of the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seq %q: %w", args[0], err)
		}

		entry, err := app.queue.Revive(cmd.Context(), seq)
		if err != nil {
			return err
		}
		return printJSON(cmd, entry)
	},
}

func init() {
	syncCmd.AddCommand(syncStatusCmd, syncDrainCmd, syncDeadCmd, syncReviveCmd)
	rootCmd.AddCommand(syncCmd)
}
