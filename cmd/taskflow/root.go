package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskflow/client/internal/cache"
	"github.com/taskflow/client/internal/config"
	backendInfra "github.com/taskflow/client/internal/infrastructure/backend"
	"github.com/taskflow/client/internal/infrastructure/realtime"
	"github.com/taskflow/client/internal/infrastructure/storage"
	"github.com/taskflow/client/pkg/logger"
	"github.com/taskflow/client/repository"
	backendRepo "github.com/taskflow/client/repository/backend"
	boltRepo "github.com/taskflow/client/repository/bolt"
	authUC "github.com/taskflow/client/usecase/auth"
	taskUC "github.com/taskflow/client/usecase/tasks"
)

// app bundles the wired client. It is built once per invocation and closed
// when the command returns.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *storage.Store
	api      *backendInfra.Client
	source   *realtime.Source
	sync     *cache.Synchronizer
	sessions repository.SessionStore
	snapshot repository.SnapshotRepository
	tasks    *taskUC.UseCase
	auth     *authUC.UseCase
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	store, err := storage.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	sessions := boltRepo.NewSessionRepository(store)
	snapshot := boltRepo.NewSnapshotRepository(store)

	api := backendInfra.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, zapLogger)
	source := realtime.New(realtime.Config{
		URL:          cfg.Realtime.URL,
		MaxRetries:   cfg.Realtime.MaxRetries,
		RetryBackoff: cfg.Realtime.RetryBackoff,
		PingInterval: cfg.Realtime.PingInterval,
	}, zapLogger)

	sync := cache.New(zapLogger)
	taskRepo := backendRepo.NewTaskRepository(api, sessions)
	userRepo := backendRepo.NewUserRepository(api, sessions)
	authRepo := backendRepo.NewAuthRepository(api)

	return &app{
		cfg:      cfg,
		logger:   zapLogger,
		store:    store,
		api:      api,
		source:   source,
		sync:     sync,
		sessions: sessions,
		snapshot: snapshot,
		tasks:    taskUC.New(sync, taskRepo, userRepo, sessions, snapshot, zapLogger),
		auth:     authUC.New(authRepo, userRepo, sessions, source, zapLogger),
	}, nil
}

func (a *app) Close() {
	a.source.Disconnect()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("state store close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Task management client",
		Long:          "taskflow is a client for the remote task backend: sign in, manage tasks, follow live updates, or run the local dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newSignInCmd(),
		newSignUpCmd(),
		newSignOutCmd(),
		newTasksCmd(),
		newWatchCmd(),
		newServeCmd(),
	)
	return root
}
