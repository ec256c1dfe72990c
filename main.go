package main

import (
	"net/http"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hotel-autopilot/browser"
	"hotel-autopilot/config"
	"hotel-autopilot/orchestrator"
	"hotel-autopilot/relay"
	"hotel-autopilot/server"
	"hotel-autopilot/session"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	launcher, err := browser.NewLauncher(cfg)
	if err != nil {
		logger.Fatal("could not start browser launcher", zap.Error(err))
	}
	defer launcher.Stop()

	registry := session.NewRegistry(logger)
	relays := relay.NewManager(cfg, logger)
	launch := func(site config.Site) (session.Browser, playwright.Page, error) {
		return launcher.Launch(site)
	}
	orch := orchestrator.New(cfg, logger, registry, relays, launch)
	srv := server.New(cfg, logger, orch, registry)

	logger.Info("server listening",
		zap.String("port", cfg.Port),
		zap.Bool("headless", cfg.Headless),
		zap.Int("sites", len(cfg.Sites)))

	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
