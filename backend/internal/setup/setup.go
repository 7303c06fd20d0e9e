package setup

import (
	"fmt"

	"github.com/portal-dev/portal/backend/internal/handler"
	"github.com/portal-dev/portal/backend/internal/service"
	"github.com/portal-dev/portal/backend/internal/storage/pg"
	"github.com/portal-dev/portal/shared/config"
	"github.com/portal-dev/portal/shared/jwt"
	mw "github.com/portal-dev/portal/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	if cfg.JwtKey() == "" {
		return nil, fmt.Errorf("jwt_key is required (private.yaml or JWT_SECRET)")
	}

	storage, err := pg.New(cfg.Private.Pg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if cfg.Public.Backend.SeedDemoUsers {
		if err := service.SeedDemoUsers(storage); err != nil {
			storage.Cleanup()
			return nil, err
		}
	}

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	auth := service.NewAuth(storage, jwtSvc)
	post := service.NewPost(storage, cfg.Public.Board)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        handler.New(auth, post, storage),
		AuthMiddleware: mw.NewAuth(jwtSvc),
	}, nil
}
