package auth

import (
	"github.com/alphaedge/backend/internal/auth/google"
	"github.com/alphaedge/backend/internal/auth/service"
	"github.com/alphaedge/backend/internal/auth/token"
	"github.com/alphaedge/backend/internal/clock"
	"github.com/alphaedge/backend/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *token.Manager {
		return token.NewManager(cfg.JWTSecret, clk)
	}),
	fx.Provide(func(cfg config.Config) google.Verifier {
		return google.NewVerifier(cfg.GoogleClientID)
	}),
	fx.Provide(service.NewService),
)
