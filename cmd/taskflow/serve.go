package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskflow/client/api/handler"
	"github.com/taskflow/client/internal/infrastructure/monitor"
	"github.com/taskflow/client/internal/middleware"
	"github.com/taskflow/client/internal/router"
	"github.com/taskflow/client/internal/services"
	"github.com/taskflow/client/internal/services/lifecycle"
	"github.com/taskflow/client/pkg/httpcontext"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
			manager.Listen(cancel)

			// resume an existing session: realtime up, stale view, fresh list
			if session, err := a.auth.Current(ctx); err == nil {
				if err := a.source.Connect(ctx, session.Token); err != nil {
					a.logger.Warn("realtime connect on startup failed", zap.Error(err))
				}
				_ = a.tasks.RestoreSnapshot(ctx)
				if err := a.tasks.Refresh(ctx); err != nil {
					a.logger.Warn("initial refresh failed", zap.Error(err))
				}
			}
			unbind := a.tasks.BindRealtime(a.source)
			defer unbind()

			mon := monitor.New(a.api, a.source, a.store, 10*time.Second, a.logger)
			mon.Start()
			manager.Register("monitor", func(ctx context.Context) error {
				mon.Stop()
				return nil
			})

			if a.cfg.Refresh.Enabled {
				refresher := services.NewRefresher(a.tasks, a.source, a.logger, services.RefresherConfig{
					Interval: a.cfg.Refresh.Interval,
				})
				refresher.Start()
				manager.Register("refresher", func(ctx context.Context) error {
					refresher.Stop(ctx)
					return nil
				})
			}

			adapter := httpcontext.NewAdapter(a.cfg.Context.RequestTimeout)
			handlers := router.Handlers{
				Auth:   apiHandler.NewAuthHandler(a.auth, a.source, a.tasks, adapter, a.logger),
				Task:   apiHandler.NewTaskHandler(a.tasks, adapter, a.logger),
				Health: apiHandler.NewHealthHandler(mon, adapter, a.logger),
			}
			guard := middleware.SessionGuard(a.auth, a.logger)
			r := router.New(handlers, guard)

			server := &fasthttp.Server{
				Handler:      r.Handler,
				ReadTimeout:  a.cfg.Dashboard.ReadTimeout,
				WriteTimeout: a.cfg.Dashboard.WriteTimeout,
				IdleTimeout:  a.cfg.Dashboard.IdleTimeout,
				Name:         a.cfg.AppName,
			}

			go func() {
				a.logger.Info("dashboard started", zap.String("address", a.cfg.DashboardAddress()))
				if err := server.ListenAndServe(a.cfg.DashboardAddress()); err != nil {
					a.logger.Error("dashboard server crashed", zap.Error(err))
					cancel()
				}
			}()
			manager.Register("dashboard", func(ctx context.Context) error {
				return server.Shutdown()
			})

			<-ctx.Done()
			return manager.Shutdown(context.Background())
		},
	}
}
