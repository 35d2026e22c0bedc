package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/components/dashboard/gorouter"
	"github.com/goliatone/go-insights/components/dashboard/httpapi"
	"github.com/goliatone/go-insights/pkg/mqttpub"
)

type serveCmd struct {
	Addr     string `help:"Listen address (overrides server.addr)."`
	BasePath string `name:"base-path" help:"Route prefix (overrides server.base_path)."`
	Stdlib   bool   `help:"Serve with net/http instead of the fiber adapter."`
}

func (cmd *serveCmd) Run(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.Addr != "" {
		a.cfg.Server.Addr = cmd.Addr
	}
	if cmd.BasePath != "" {
		a.cfg.Server.BasePath = cmd.BasePath
	}

	source, err := a.source()
	if err != nil {
		return err
	}

	broadcast := dashboard.NewBroadcastHook()
	defer broadcast.Close()
	hooks := dashboard.MultiHook{broadcast}
	if n := a.cfg.Notifications; n.Enabled() {
		publisher, err := mqttpub.Connect(mqttpub.Options{BrokerURL: n.Broker, ClientID: n.ClientID})
		if err != nil {
			return err
		}
		defer publisher.Close()
		hooks = append(hooks, &dashboard.NotificationsHook{Client: publisher, Channel: n.Channel, Kinds: n.Kinds})
		a.logger.WithField("broker", n.Broker).Info("insightsctl: forwarding events over mqtt")
	}

	telemetry := dashboard.NewLogTelemetry(a.logger)
	service := dashboard.NewService(dashboard.Options{
		Source:      source,
		Config:      a.cfg,
		Logger:      a.logger,
		Telemetry:   telemetry,
		RefreshHook: hooks,
	})
	defer service.Close(context.Background())

	executor := httpapi.NewCommandExecutor(service, telemetry)
	if cmd.Stdlib {
		return serveStdlib(ctx, a, executor, broadcast)
	}
	return serveFiber(ctx, a, executor, broadcast)
}

func serveFiber(ctx context.Context, a *app, executor httpapi.Executor, broadcast *dashboard.BroadcastHook) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:    server.Router(),
		API:       executor,
		Broadcast: broadcast,
		BasePath:  a.cfg.Server.BasePath,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(a.cfg.Server.Addr)
	}()
	a.logger.WithField("addr", a.cfg.Server.Addr).Info("insightsctl: serving insights api")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func serveStdlib(ctx context.Context, a *app, executor httpapi.Executor, broadcast *dashboard.BroadcastHook) error {
	mux := http.NewServeMux()
	handlers := &httpapi.Handlers{API: executor, Broadcast: broadcast}
	handlers.Routes(mux, a.cfg.Server.BasePath)
	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	a.logger.WithField("addr", server.Addr).Info("insightsctl: serving insights api (net/http)")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
