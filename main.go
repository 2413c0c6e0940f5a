package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/command"
	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
	"github.com/CarlosJoao1/vivae-erp-console/internal/session"
	"github.com/CarlosJoao1/vivae-erp-console/pkg/config"
	"github.com/CarlosJoao1/vivae-erp-console/pkg/logger"
	"github.com/CarlosJoao1/vivae-erp-console/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		log.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer telemetry.Shutdown(context.Background())

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	)

	manager, err := session.NewManager(session.Config{
		Store:           session.NewFileStore(cfg.Session.TokenFile),
		Auth:            erp.NewAuthService(client),
		Log:             log,
		RefreshLeeway:   cfg.Session.RefreshLeeway,
		MinRefreshDelay: cfg.Session.MinRefreshDelay,
	})
	if err != nil {
		log.Error("failed to initialize session", zap.Error(err))
		os.Exit(1)
	}
	client.SetTokenSource(manager)
	client.SetTenantSource(manager)

	app := command.NewApp(&command.Deps{
		Config:     cfg,
		Log:        log,
		Session:    manager,
		MasterData: erp.NewMasterDataService(client),
		Sales:      erp.NewSalesService(client),
		Production: erp.NewProductionService(client),
		Roles:      erp.NewRolesService(client),
	})

	if err := app.RunContext(ctx, os.Args); err != nil {
		// Exit-coded errors are already printed by the CLI framework.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
