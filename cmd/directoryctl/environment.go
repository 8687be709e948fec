// cmd/directoryctl/environment.go
package main

import (
	"context"
	"io"
	"os"

	"github.com/localbiz/directory-backend/internal/bootstrap"
	"github.com/localbiz/directory-backend/internal/config"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/services"
)

// environment is what every command runs against.
type environment struct {
	cfg        *config.Config
	store      repository.Store
	auth       *services.AuthService
	businesses *services.BusinessService
	reconcile  *services.ReconcileService
	out        io.Writer
	close      func()
}

type opener func(ctx context.Context, migrate bool) (*environment, error)

func openEnvironment(ctx context.Context, migrate bool) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	bootstrap.ConfigureLogging(cfg.Log)

	res, err := bootstrap.OpenStore(cfg, migrate)
	if err != nil {
		return nil, err
	}

	env := newEnvironment(cfg, res.Store, os.Stdout)
	env.close = res.Close
	return env, nil
}

func newEnvironment(cfg *config.Config, store repository.Store, out io.Writer) *environment {
	categories := services.NewCategoryCatalog(nil)
	mirror := services.NewApplicationMirror(store)
	notifications := services.NewNotificationService(services.NewLogNotifier(), cfg)
	intake := services.NewIntakeService(store, mirror, services.NewJWTIdentityResolver(), categories)

	return &environment{
		cfg:        cfg,
		store:      store,
		auth:       services.NewAuthService(store, cfg),
		businesses: services.NewBusinessService(store, mirror, notifications, categories),
		reconcile:  services.NewReconcileService(store, intake),
		out:        out,
		close:      func() {},
	}
}
