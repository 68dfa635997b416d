package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/workforce-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// NewLogger builds the JSON logger shared by the request log and the application.
func NewLogger(env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-portal"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}

func NewRouter(
	JWTService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	employeeHandler EmployeeHandler,
	opts RouterOptions,
) *chi.Mux {
	r := chi.NewRouter()
	logger := NewLogger(opts.Env, opts.LogLevel)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/admin/login", authHandler.AdminLogin)

			r.Route("/employee", func(r chi.Router) {
				r.Post("/login", authHandler.EmployeeLogin)
				r.Post("/forgot-password", authHandler.ForgotPassword)
				r.Post("/reset-password", authHandler.ResetPassword)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {

				// Employee only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Post("/clock-in", attendanceHandler.ClockIn)
					r.Post("/clock-out", attendanceHandler.ClockOut)
					r.Get("/me", attendanceHandler.GetMyAttendance)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", attendanceHandler.List)
					r.Get("/employees/{employeeID}", attendanceHandler.GetEmployeeAttendance)
					r.Delete("/employees/{employeeID}", attendanceHandler.DeleteEmployeeAttendance)
					r.Delete("/{id}", attendanceHandler.Delete)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", employeeHandler.List)
				r.Post("/", employeeHandler.Create)
				r.Patch("/{employeeID}", employeeHandler.Update)
				r.Delete("/{employeeID}", employeeHandler.Delete)
			})
		})
	})
	return r
}
