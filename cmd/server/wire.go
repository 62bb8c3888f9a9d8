//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"notify_hub/internal/app"
	"notify_hub/internal/auth"
	"notify_hub/internal/config"
	"notify_hub/internal/http"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/logging"
	"notify_hub/internal/metrics"
	"notify_hub/internal/queue/rabbitmq"
	"notify_hub/internal/service/notify"
	"notify_hub/internal/service/retention"
	"notify_hub/internal/store"
	"notify_hub/internal/ws"
)

func InitializeApp(cfg *config.Config) (*app.App, error) {
	wire.Build(
		logging.New,
		metrics.New,
		store.NewStore,
		auth.NewJWTValidator,
		notify.NewCounter,
		wire.Bind(new(ws.Counter), new(*notify.Counter)),
		ws.NewRegistry,
		ws.NewUpgrader,
		wire.Bind(new(notify.Pusher), new(*ws.Registry)),
		notify.NewService,
		wire.Bind(new(rabbitmq.Notifier), new(*notify.Service)),
		rabbitmq.NewConsumer,
		rabbitmq.NewPublisher,
		retention.NewSweeper,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
