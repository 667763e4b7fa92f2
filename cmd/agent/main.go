package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/sitecrew-go/internal/config"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/connectivity"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/logger"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/sitecrew-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/sitecrew-go/internal/service/dashboard"
	paymentService "github.com/cmlabs-hris/sitecrew-go/internal/service/payment"
	projectService "github.com/cmlabs-hris/sitecrew-go/internal/service/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/service/syncer"
	workerService "github.com/cmlabs-hris/sitecrew-go/internal/service/worker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var version = "dev"

// agent holds everything a command needs. It is built once per invocation.
type agent struct {
	cfg      *config.AgentConfig
	log      *slog.Logger
	closeLog func() error

	db          *sqlite.DB
	queue       syncqueue.Queue
	client      *remote.Client
	monitor     *connectivity.Monitor
	coordinator *syncer.Coordinator

	workers    worker.WorkerService
	projects   project.ProjectService
	attendance attendance.AttendanceService
	payments   payment.PaymentService
	dashboard  dashboard.DashboardService
}

var app *agent

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "sitecrew field agent: local-first worker, attendance and payment ledger",
	Long: `The field agent keeps the site ledger in a local SQLite database and
forwards every write to the remote server. Writes made while the server is
unreachable are queued and replayed, in order, once it is reachable again.

Run "agent run" to keep the agent syncing in the background.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAgent(cmd.Context())
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return app.Close()
	},
}

func newAgent(ctx context.Context) (*agent, error) {
	cfg, err := config.LoadAgent()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// stdout carries command output
	log, closeLog := logger.New(logger.Options{
		App:     "sitecrew-agent",
		Version: version,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Output:  os.Stderr,
	})
	slog.SetDefault(log)

	decimal.MarshalJSONWithoutQuotes = true

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// The agent cannot accept writes without its local store
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	queue := sqlite.NewSyncQueue(db)
	recovered, err := queue.Recover(ctx)
	if err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("failed to recover sync queue: %w", err)
	}
	if recovered > 0 {
		log.Warn("Recovered sync entries from an interrupted drain", "count", recovered)
	}

	opts := []remote.Option{remote.WithTimeout(cfg.RemoteTimeout)}
	if cfg.AuthToken != "" {
		opts = append(opts, remote.WithToken(cfg.AuthToken))
	}
	client, err := remote.New(cfg.RemoteBaseURL, opts...)
	if err != nil {
		db.Close()
		closeLog()
		return nil, err
	}

	monitor := connectivity.NewMonitor(client,
		connectivity.WithProbeTimeout(cfg.RemoteTimeout),
		connectivity.WithLogger(log),
	)

	workerRepo := sqlite.NewWorkerRepository(db)
	projectRepo := sqlite.NewProjectRepository(db)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	paymentRepo := sqlite.NewPaymentRepository(db)

	coordinator := syncer.NewCoordinator(queue, monitor,
		syncer.LocalStores{
			Workers:    workerRepo,
			Projects:   projectRepo,
			Attendance: attendanceRepo,
			Payments:   paymentRepo,
		},
		syncer.RemoteStores{
			Workers:    client.Workers(),
			Projects:   client.Projects(),
			Attendance: client.Attendance(),
			Payments:   client.Payments(),
		},
		syncer.WithRemoteTimeout(cfg.RemoteTimeout),
		syncer.WithMaxAttempts(cfg.SyncMaxAttempts),
		syncer.WithDrainInterval(cfg.SyncInterval),
		syncer.WithLogger(log),
	)

	return &agent{
		cfg:         cfg,
		log:         log,
		closeLog:    closeLog,
		db:          db,
		queue:       queue,
		client:      client,
		monitor:     monitor,
		coordinator: coordinator,
		workers:     workerService.NewWorkerService(workerRepo, projectRepo, coordinator),
		projects:    projectService.NewProjectService(projectRepo, coordinator),
		attendance:  attendanceService.NewAttendanceService(attendanceRepo, workerRepo, projectRepo, coordinator),
		payments:    paymentService.NewPaymentService(paymentRepo, workerRepo, attendanceRepo, coordinator),
		dashboard:   dashboardService.NewDashboardService(sqlite.NewDashboardRepository(db)),
	}, nil
}

// probe refreshes reachability before a one-shot command writes.
func (a *agent) probe(ctx context.Context) {
	_ = a.monitor.Probe(ctx)
}

func (a *agent) Close() error {
	if a == nil {
		return nil
	}
	err := a.db.Close()
	if cerr := a.closeLog(); err == nil {
		err = cerr
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optionalString returns nil for flags the user did not set.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func optionalDecimal(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	raw := optionalString(cmd, name)
	if raw == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &d, nil
}

func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
