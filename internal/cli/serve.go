package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/fightmatch/internal/adapters/http/api"
	"github.com/okian/fightmatch/internal/adapters/http/site"
	"github.com/okian/fightmatch/internal/adapters/http/swagger"
	service "github.com/okian/fightmatch/internal/app"
	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

// HTTP server timeouts.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func (a *App) serve(ctx context.Context, args []string) error {
	fs := a.flags("serve")
	addr := fs.String("addr", a.cfg.Addr, "Listen address")
	if err := parse(fs, args); err != nil {
		return err
	}

	svc := a.newService()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		if err := svc.Stop(context.Background()); err != nil {
			a.log.Warn(ctx, "service stop failed", logger.Error(err))
		}
	}()

	// Boards are optional at boot; POST /api/v1/refresh retries later.
	if res, err := svc.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "initial refresh failed", logger.Error(err))
	} else {
		a.log.Info(ctx, "initial boards ready", logger.Int("boards", res.Boards))
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	r := api.NewRouter(
		api.WithTimeout(a.cfg.APITimeout),
		api.WithCORSOrigins(a.cfg.CORSOriginList()),
	)
	site.Register(ctx, r)
	swagger.Register(ctx, r)
	api.NewServer(svc, svc,
		api.WithLogger(a.log.Named("api")),
		api.WithRateLimit(a.cfg.APIRateLimit, a.cfg.APIRateWindow),
	).Register(ctx, r)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", *addr, err)
	}
	srv := &http.Server{
		Handler:           r,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	a.log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info(ctx, "server stopped")
	return nil
}

func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// average pause over the process lifetime
		metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}

// updateServiceMetrics mirrors the service stats into gauges GetStats
// does not touch.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if n, ok := stats["boards"].(int); ok {
		metrics.UpdateBoardsStored(n)
	}
	if n, ok := stats["workers"].(int); ok {
		metrics.UpdateWorkerActiveCount(n)
	}
	if n, ok := stats["queueSize"].(int); ok {
		metrics.UpdateQueueCapacity(n)
	}
}
