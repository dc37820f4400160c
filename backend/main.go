package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"foodtruck/pos/internal/api"
	"foodtruck/pos/internal/config"
	"foodtruck/pos/internal/database"
	"foodtruck/pos/internal/logger"
	"foodtruck/pos/internal/migrations"
	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/scheduler"
	"foodtruck/pos/internal/seed"
	"foodtruck/pos/internal/service"
	"foodtruck/pos/internal/store"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		zlog.Fatal("migrations", zap.Error(err))
	}

	st := store.New(db)
	if _, err := seed.LoadMenu(ctx, db, cfg.MenuCSV, zlog); err != nil {
		zlog.Error("menu seed failed", zap.Error(err))
	}
	if _, err := seed.EnsureAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword, zlog); err != nil {
		zlog.Fatal("admin seed", zap.Error(err))
	}

	hub := realtime.NewHub(zlog)
	var events realtime.Publisher = hub
	if cfg.RedisURL != "" {
		broker, err := realtime.NewRedisBroker(cfg.RedisURL, hub, zlog)
		if err != nil {
			zlog.Warn("redis unavailable, realtime stays local", zap.Error(err))
		} else {
			defer broker.Close()
			events = broker
			go func() {
				if err := broker.Run(ctx); err != nil {
					zlog.Error("redis relay stopped", zap.Error(err))
				}
			}()
		}
	}

	shop := pos.Store{
		Name:        cfg.StoreName,
		Phone:       cfg.StoreWhatsApp,
		CountryCode: cfg.PhoneCountryCode,
		Currency:    cfg.Currency,
	}
	svc := service.New(st, events, shop, cfg.Location(), zlog)

	jobs, err := scheduler.New(svc, cfg.Location(), cfg.ShiftAutoCloseCron, cfg.LowStockCron, zlog)
	if err != nil {
		zlog.Fatal("scheduler", zap.Error(err))
	}
	jobs.Start()
	defer jobs.Stop()

	handler := api.New(svc, st, hub, zlog, api.Options{
		Secret:        cfg.Secret,
		CORSOrigins:    cfg.AllowedOrigins(),
		TrustedProxies: cfg.Proxies(),
		WebOrderRPS:    cfg.WebOrderRPS,
		WebOrderBurst:  cfg.WebOrderBurst,
	})
	handler.Limiter().StartCleanup(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("food truck POS server starting",
		zap.String("port", cfg.HTTPPort),
		zap.String("driver", cfg.DBDriver),
		zap.String("store", cfg.StoreName))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server stopped")
}
