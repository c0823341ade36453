package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/suteetoe/receptionist/internal/handler"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/pkg/database"
	"github.com/suteetoe/receptionist/pkg/jwtutil"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"github.com/suteetoe/receptionist/pkg/validation"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	if err := database.Migrate(a.db); err != nil {
		log.Error("Failed to run database migrations", zap.Error(err))
		return err
	}
	log.Info("Database migrations applied")

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      a.cfg.JWT.SigningKey,
		ExpirationHours: a.cfg.JWT.ExpirationHours,
	})

	h := handler.New(handler.Deps{
		ServiceName: a.cfg.ServiceName,
		Tenants:     a.tenants,
		Profiles:    a.profiles,
		Agents:      a.agents,
		Knowledge:   a.knowledge,
		Templates:   a.templates,
		Prompts:     a.prompts,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.EchoValidator{}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(metrics.NewHTTPMetrics(a.cfg.Metrics.Prefix).Middleware())

	h.RegisterRoutes(e, jwtUtil)

	port := a.cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
	}

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
