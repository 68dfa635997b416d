package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/config"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/workforce-portal/internal/handler/http"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/email"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/tokenstore"
	"github.com/cmlabs-hris/workforce-portal/internal/repository/mongodb"
	"github.com/cmlabs-hris/workforce-portal/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-portal/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/workforce-portal/internal/service/auth"
	employeeService "github.com/cmlabs-hris/workforce-portal/internal/service/employee"
	locationService "github.com/cmlabs-hris/workforce-portal/internal/service/location"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(appHTTP.NewLogger(cfg.App.Env, cfg.App.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("Database schema applied")
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	adminRepo := postgresql.NewAdminRepository(db)

	var attendanceRepo attendance.AttendanceRepository
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		mongoDB, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Name)
		if err != nil {
			return fmt.Errorf("connect to mongodb: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoDB.Close(closeCtx); err != nil {
				slog.Error("Failed to close mongodb", "error", err)
			}
		}()
		if err := mongodb.EnsureIndexes(ctx, mongoDB); err != nil {
			return fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		attendanceRepo = mongodb.NewAttendanceRepository(mongoDB, cfg.Attendance.Location)
	default:
		attendanceRepo = postgresql.NewAttendanceRepository(db)
	}
	slog.Info("Attendance store selected", "driver", cfg.Store.Driver)

	gate, err := locationService.NewGate(cfg.Attendance.Zones)
	if err != nil {
		return fmt.Errorf("build location gate: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	resetTokens := tokenstore.New(cfg.ResetToken.TTL)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}

	authSvc := serviceAuth.NewAuthService(adminRepo, employeeRepo, JWTService, resetTokens, emailService, cfg.App.FrontendURL)
	if err := authSvc.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, gate, cfg.Attendance.Location)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, attendanceRepo)

	scheduler := cron.NewScheduler(ctx)
	if err := cron.NewResetTokenJobs(resetTokens, cfg.ResetToken.SweepInterval).RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			LogLevel:       cfg.App.LogLevel,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.Attendance.Timezone, "zones", len(cfg.Attendance.Zones))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
