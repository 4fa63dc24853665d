package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/db"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/auth"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/config"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/handlers"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/health"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/kitchen"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/middleware"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/orders"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/router"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/scheduler"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/services"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/tables"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New("mayfair", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(log)
	defer hub.Close()

	probes := []health.Probe{health.NewDatabaseProbe(gdb)}

	var publisher realtime.Publisher
	switch cfg.EventBroker {
	case config.BrokerRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		probes = append(probes, health.NewRedisProbe(client))

		bridge := realtime.NewRedisBridge(client, hub, log)
		go func() {
			if err := bridge.Run(ctx, nil); err != nil {
				log.Error("redis event bridge stopped", slog.Any("error", err))
			}
		}()
		publisher = bridge
	case config.BrokerRabbitMQ:
		bridge, err := realtime.DialAMQPBridge(cfg.RabbitMQURL, hub, log)
		if err != nil {
			return err
		}
		defer bridge.Close()
		probes = append(probes, bridge)

		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Error("amqp event bridge stopped", slog.Any("error", err))
			}
		}()
		publisher = bridge
	default:
		publisher = realtime.NewLocalPublisher(hub)
	}
	log.Info("event broker ready", slog.String("broker", cfg.EventBroker))

	notes := notifications.NewStore(gdb, cfg.NotificationTTL)
	directory := kitchen.NewDirectory()
	tableSvc := tables.NewService(gdb, tables.Deriver{Lead: cfg.ReservationLead}, publisher, log)
	alerts := services.NewManagerAlerts(10*time.Second, log)
	orderSvc := orders.NewService(gdb, directory, notes, publisher, tableSvc.Deriver(),
		decimal.NewFromFloat(cfg.TaxRate), log).
		WithAlerts(alerts).
		WithTableObserver(tableSvc)

	jobs := scheduler.New(log)
	if err := jobs.AddJob(scheduler.Job{
		Name:     "notification-purge",
		Interval: cfg.NotificationPurgeInterval,
		Run: func(ctx context.Context) error {
			n, err := notes.PurgeExpired(ctx)
			if n > 0 {
				log.Info("purged expired notifications", slog.Int64("count", n))
			}
			return err
		},
	}); err != nil {
		return err
	}
	if err := jobs.AddJob(scheduler.Job{
		Name:     "table-status",
		Interval: cfg.TableStatusInterval,
		Run:      tableSvc.Watch,
	}); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	limit, err := middleware.RateLimit(cfg.RateLimit, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(handlers.Deps{
		DB:             gdb,
		Orders:         orderSvc,
		Tables:         tableSvc,
		Notifications:  notes,
		Directory:      directory,
		Hub:            hub,
		Health:         health.NewChecker(probes...),
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})
	r := router.NewRouter(h, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Verifier:       verifier,
		DB:             gdb,
		RateLimit:      limit,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	alerts.Wait()
	return nil
}
