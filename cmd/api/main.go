package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/evmyshkin/mvpy/internal/config"
	"github.com/evmyshkin/mvpy/internal/httpserver"
	"github.com/evmyshkin/mvpy/internal/logger"
	"github.com/evmyshkin/mvpy/internal/migrations"
	"github.com/evmyshkin/mvpy/internal/models"
	"github.com/evmyshkin/mvpy/internal/services/users"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		// The level is unknown until config loads.
		logger.New("info").Fatalw("invalid configuration", "error", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		lg.Fatalw("db handle failed", "error", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	defer sqlDB.Close()

	if err := migrations.Migrate(db); err != nil {
		lg.Fatalw("migrate failed", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv, err := httpserver.NewServer(db, cfg, reg, lg)
	if err != nil {
		lg.Fatalw("server setup failed", "error", err)
	}
	if err := seedDefaultAdmin(context.Background(), srv.Users, cfg, lg); err != nil {
		lg.Fatalw("admin bootstrap failed", "error", err)
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpserver.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("http server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	lg.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		lg.Warnw("graceful shutdown failed", "error", err)
	}
}

// seedDefaultAdmin makes sure ADMIN_EMAIL exists and holds the admin role.
func seedDefaultAdmin(ctx context.Context, svc *users.Service, cfg config.Config, lg *zap.SugaredLogger) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	u, err := svc.FindByEmail(ctx, cfg.AdminEmail)
	if errors.Is(err, users.ErrNotFound) {
		u, err = svc.Create(ctx, users.CreateInput{
			Email:     cfg.AdminEmail,
			FirstName: "Admin",
			LastName:  "Admin",
			Password:  cfg.AdminPassword,
		})
	}
	if err != nil {
		return err
	}
	if u.Role.Name == models.RoleAdmin {
		return nil
	}
	if _, err := svc.AssignRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	lg.Infow("seeded default admin", "user_id", u.ID)
	return nil
}
