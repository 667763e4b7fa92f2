package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/cron"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the agent running: probe the server and drain the sync queue",
	Long: `Run the background listeners until interrupted.

The server heartbeat is probed every PROBE_INTERVAL. The sync queue is drained
every SYNC_INTERVAL and immediately whenever the server becomes reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := cron.NewScheduler(app.log)
		if err := app.monitor.Register(scheduler, app.cfg.ProbeInterval); err != nil {
			return err
		}
		if err := app.coordinator.InitSyncListeners(scheduler); err != nil {
			return fmt.Errorf("failed to start sync listeners: %w", err)
		}

		scheduler.Start()
		defer scheduler.Stop()

		pending, _ := app.coordinator.Pending(ctx)
		app.log.Info("Agent running",
			"remote", app.cfg.RemoteBaseURL,
			"db", app.db.Path(),
			"pending_sync", pending,
		)

		<-ctx.Done()
		app.log.Info("Agent stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
