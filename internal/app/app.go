package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/config"
	"github.com/GlebRadaev/stockfolio/internal/events"
	"github.com/GlebRadaev/stockfolio/internal/handlers"
	"github.com/GlebRadaev/stockfolio/internal/imagehost"
	"github.com/GlebRadaev/stockfolio/internal/keepalive"
	"github.com/GlebRadaev/stockfolio/internal/pg"
	"github.com/GlebRadaev/stockfolio/internal/repo"
	"github.com/GlebRadaev/stockfolio/internal/service"
	"github.com/GlebRadaev/stockfolio/pkg/clients"
	"github.com/GlebRadaev/stockfolio/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	api       *handlers.Handlers
	srv       *service.Services
	repo      *repo.Repositories
	publisher events.Publisher
	keepalive *keepalive.Job

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := pg.NewPool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		pool.Close()
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool,
		pg.WithTimeout(cfg.StoreTimeout),
		pg.WithRetryBase(cfg.StoreRetryBase),
	)

	conn := pg.New(pool)
	a.cfg = cfg
	a.pool = pool
	a.repo = repo.New(conn, txManager)
	a.publisher = events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	images, err := imagehost.New(cfg)
	if err != nil {
		pool.Close()
		return fmt.Errorf("can't init image host: %w", err)
	}
	a.srv = service.New(a.repo, images, a.publisher)
	a.api = handlers.New(a.srv)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	if err = a.startKeepAlive(ctx); err != nil {
		return fmt.Errorf("can't start keep-alive job: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
		a.closeResources()
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// startKeepAlive pings the tracker endpoint so free-tier hosting does not
// put the instance to sleep. Only production deployments need it.
func (a *Application) startKeepAlive(ctx context.Context) error {
	if !a.cfg.IsProduction() || a.cfg.KeepAliveURL == "" {
		return nil
	}
	a.keepalive = keepalive.New(clients.NewHTTPClient(), a.cfg.KeepAliveURL)
	if err := a.keepalive.Start(a.cfg.KeepAliveSchedule); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		a.keepalive.Stop()
	}()
	return nil
}

func (a *Application) closeResources() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zap.L().Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
