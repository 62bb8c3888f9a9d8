package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notify_hub/internal/config"
	"notify_hub/internal/queue"
	"notify_hub/internal/service/retention"
	"notify_hub/internal/ws"
)

type App struct {
	cfg      *config.Config
	registry *ws.Registry
	consumer queue.Consumer
	sweeper  *retention.Sweeper
	server   *http.Server
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewApp(cfg *config.Config, registry *ws.Registry, consumer queue.Consumer, sweeper *retention.Sweeper, router *gin.Engine, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		registry: registry,
		consumer: consumer,
		sweeper:  sweeper,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		logger: logger,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.sweeper.Run(ctx)
	}()

	a.logger.Info("http server listening", zap.String("addr", a.cfg.HTTPAddr))
	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, closes every live WebSocket and waits
// for the background workers.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)
	a.registry.CloseAll()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
