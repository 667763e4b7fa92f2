package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/config"
	appHTTP "github.com/cmlabs-hris/sitecrew-go/internal/handler/http"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/database"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/logger"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/storage"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/sitecrew-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/sitecrew-go/internal/service/dashboard"
	"github.com/cmlabs-hris/sitecrew-go/internal/service/file"
	paymentService "github.com/cmlabs-hris/sitecrew-go/internal/service/payment"
	projectService "github.com/cmlabs-hris/sitecrew-go/internal/service/project"
	workerService "github.com/cmlabs-hris/sitecrew-go/internal/service/worker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, closeLog := logger.New(logger.Options{
			App:     "sitecrew-api",
			Version: version,
			Env:     cfg.App.Env,
			Level:   cfg.App.LogLevel,
			ECS:     true,
		})
		defer closeLog()
		slog.SetDefault(log)

		// Clients read money as JSON numbers
		decimal.MarshalJSONWithoutQuotes = true

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return err
		}

		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}

		projectRepo := postgresql.NewProjectRepository(db)
		workerRepo := postgresql.NewWorkerRepository(db)
		attendanceRepo := postgresql.NewAttendanceRepository(db)
		paymentRepo := postgresql.NewPaymentRepository(db)
		dashboardRepo := postgresql.NewDashboardRepository(db)

		// The server is the remote store, so writes are not forwarded anywhere
		workerSvc := workerService.NewWorkerService(workerRepo, projectRepo, nil)
		projectSvc := projectService.NewProjectService(projectRepo, nil)
		attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, workerRepo, projectRepo, nil)
		paymentSvc := paymentService.NewPaymentService(paymentRepo, workerRepo, attendanceRepo, nil)
		dashboardSvc := dashboardService.NewDashboardService(dashboardRepo)
		fileSvc := file.NewFileService(fileStorage)

		var jwtSvc jwt.Service
		if cfg.JWT.Secret != "" {
			jwtSvc = jwt.NewJWTService(cfg.JWT.Secret)
		}

		router := appHTTP.NewRouter(appHTTP.RouterConfig{
			Logger:         log,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			JWT:            jwtSvc,
			AuthRequired:   cfg.JWT.AuthRequired,
			UploadsDir:     fileStorage.BasePath(),
		}, appHTTP.Handlers{
			Worker:     appHTTP.NewWorkerHandler(workerSvc),
			Project:    appHTTP.NewProjectHandler(projectSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Payment:    appHTTP.NewPaymentHandler(paymentSvc),
			Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
			Upload:     appHTTP.NewUploadHandler(fileSvc),
		})

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.App.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Server running", "addr", server.Addr, "auth", jwtSvc != nil, "auth_required", cfg.JWT.AuthRequired)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
