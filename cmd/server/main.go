package main

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"usercms/internal/config"
	"usercms/internal/database"
	"usercms/internal/handler"
	"usercms/internal/middleware"
	"usercms/internal/repository"
	"usercms/internal/router"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	// Schema and seed failures are logged but do not stop the boot;
	// requests against a broken store fail per call instead.
	if err := store.EnsureSchema(); err != nil {
		logger.Error("schema setup failed", zap.Error(err))
	} else {
		store.SeedDefaults(cfg.BcryptCost, logger)
	}

	roleRepo := repository.NewRoleRepo(store)
	userRepo := repository.NewUserRepo(store, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	// The admin SPA is served separately; allow any origin.
	e.Use(echomw.CORS())

	router.Register(e,
		handler.NewAuthHandler(userRepo, logger),
		handler.NewRoleHandler(roleRepo, logger),
		handler.NewUserHandler(userRepo, logger),
	)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
