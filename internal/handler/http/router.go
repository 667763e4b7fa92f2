package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// JWT is nil when token checks are disabled
	JWT          jwt.Service
	AuthRequired bool
	// UploadsDir is served under /uploads/
	UploadsDir string
}

type Handlers struct {
	Worker     WorkerHandler
	Project    ProjectHandler
	Attendance AttendanceHandler
	Payment    PaymentHandler
	Dashboard  DashboardHandler
	Upload     UploadHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.JWT != nil {
			r.Use(jwtauth.Verifier(cfg.JWT.JWTAuth()))
			r.Use(middleware.DeviceAuth(cfg.JWT, cfg.AuthRequired))
		}

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Project.List)
			r.Post("/", h.Project.Create)
			r.Get("/{id}", h.Project.Get)
			r.Put("/{id}", h.Project.Update)
			r.Delete("/{id}", h.Project.Deactivate)
		})

		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.Worker.List)
			r.Post("/", h.Worker.Create)
			r.Get("/{id}", h.Worker.Get)
			r.Put("/{id}", h.Worker.Update)
			r.Delete("/{id}", h.Worker.Deactivate)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.Attendance.List)
			r.Post("/", h.Attendance.Mark)
			r.Get("/{id}", h.Attendance.Get)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.Payment.List)
			r.Post("/", h.Payment.Create)
			r.Get("/{id}", h.Payment.Get)
			r.Put("/{id}", h.Payment.Update)
		})

		r.Get("/dashboard", h.Dashboard.GetDashboard)
		r.Get("/calculate-wages", h.Payment.CalculateWages)
		r.Post("/upload/photo", h.Upload.UploadPhoto)
	})

	return r
}
