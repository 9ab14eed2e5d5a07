// Package server owns the process lifecycle: it connects the backing
// services, wires background work and runs the HTTP and gRPC listeners
// until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/tiffin/app/jobs"
	"github.com/shashiranjanraj/tiffin/app/listeners"
	"github.com/shashiranjanraj/tiffin/app/pricing"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/internal/kernel"
	"github.com/shashiranjanraj/tiffin/pkg/cache"
	"github.com/shashiranjanraj/tiffin/pkg/database"
	"github.com/shashiranjanraj/tiffin/pkg/event"
	"github.com/shashiranjanraj/tiffin/pkg/grpc"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/middleware"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/shashiranjanraj/tiffin/pkg/queue"
	"github.com/shashiranjanraj/tiffin/pkg/schedule"
	"github.com/shashiranjanraj/tiffin/pkg/storage"
	"github.com/shashiranjanraj/tiffin/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// App is a booted process: database, cache, storage and queue are ready.
type App struct {
	Hub    *ws.Hub
	Queue  *queue.Manager
	closer []func()
}

// Boot connects everything the commands share. Redis is optional: without
// it the cache degrades to misses and the redis queue driver is refused.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &App{Hub: ws.NewHub(), Queue: queue.Default()}

	flush, err := logger.Setup()
	if err != nil {
		logger.Warn("logger: mongo sink disabled", "error", err)
	}
	a.closer = append(a.closer, flush)

	if err := database.Connect(); err != nil {
		a.Close()
		return nil, err
	}
	a.closer = append(a.closer, func() {
		if sqlDB, err := database.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("cache: disabled", "error", err)
	} else {
		a.closer = append(a.closer, func() { _ = cache.Close() })
	}

	if err := storage.Connect(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.useQueueDriver(); err != nil {
		a.Close()
		return nil, err
	}
	a.Queue.UseDB(database.DB)

	jobs.Register(a.Queue, jobs.Deps{
		Hub:        a.Hub,
		Notifier:   notification.New(repositories.NewNotificationRepository(database.DB)),
		WebhookURL: config.FoodMakerWebhookURL(),
	})
	listeners.Register(event.Default(), a.Queue)
	return a, nil
}

func (a *App) useQueueDriver() error {
	switch driver := config.QueueDriver(); driver {
	case "memory":
		a.Queue.SetDriver(queue.NewMemoryDriver(1000))
	case "redis":
		if cache.RDB == nil {
			return errors.New("queue: redis driver needs a reachable REDIS_ADDR")
		}
		a.Queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	case "amqp":
		d, err := queue.NewAMQPDriver(config.AMQPURL(), config.QueueWorkers())
		if err != nil {
			return err
		}
		a.Queue.SetDriver(d)
		a.closer = append(a.closer, func() { _ = d.Close() })
	default:
		return fmt.Errorf("queue: unknown driver %q", driver)
	}
	logger.Info("queue: driver selected", "driver", config.QueueDriver())
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
	a.closer = nil
}

// Kernel builds the HTTP handler over the booted connections.
func (a *App) Kernel(limiter *middleware.RateLimiter) (*kernel.HTTP, error) {
	policy, err := pricing.FromConfig()
	if err != nil {
		return nil, err
	}
	disk, err := storage.Default()
	if err != nil {
		return nil, err
	}
	return kernel.NewHTTP(kernel.Deps{
		DB:      database.DB,
		Disk:    disk,
		Hub:     a.Hub,
		Limiter: limiter,
		Policy:  policy,
		MenuTTL: config.MenuCacheTTL(),
	})
}

// Schedule registers the recurring maintenance tasks on s.
func (a *App) Schedule(s *schedule.Scheduler) error {
	purge := services.PurgeIdempotencyKeys(repositories.NewIdempotencyRepository(database.DB), config.IdempotencyTTL())
	return s.Every(time.Hour).Name("idempotency:purge").WithoutOverlapping().Run(purge)
}

// Serve runs HTTP, gRPC, queue workers and the scheduler until ctx ends,
// then drains them.
func (a *App) Serve(ctx context.Context) error {
	limiter := middleware.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 200), time.Minute)
	k, err := a.Kernel(limiter)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.Hub.Run(ctx)
	go limiter.Run(ctx)

	workersDone := make(chan error, 1)
	go func() { workersDone <- a.Queue.Work(ctx, config.QueueWorkers()) }()

	sched := schedule.New()
	if err := a.Schedule(sched); err != nil {
		return err
	}
	sched.Start(ctx)

	grpcSrv, err := grpc.Start(config.GRPCPort(), database.Ping)
	if err != nil {
		return err
	}
	defer grpc.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	logger.Info("http: shutting down")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}

	event.Wait()
	cancel()
	if err := <-workersDone; err != nil {
		logger.Error("queue: workers stopped", "error", err)
	}
	sched.Wait()
	return nil
}
