package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/infrastructure"
	"github.com/lh/pagedeck/internal/pagecodec"
	"github.com/lh/pagedeck/internal/pages"
	"github.com/lh/pagedeck/internal/server"
	"github.com/lh/pagedeck/internal/sessions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	if err := cfg.Finalize(); err != nil {
		log.Fatal("config finalize failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}

	sessionSys := sessions.New(
		infra.Database.DB(),
		infra.Storage,
		pagecodec.New(),
		infra.Station,
		pages.LimitsFromConfig(&cfg.Clipboard),
		cfg.Pagination,
		infra.Logger,
	)

	handler := buildHandler(cfg, infra, sessionSys)
	serverSys := server.New(&cfg.Server, handler, cfg.ShutdownTimeoutDuration(), infra.Logger)

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	if err := sessionSys.Start(infra.Lifecycle); err != nil {
		log.Fatal("sessions start failed: ", err)
	}
	if err := serverSys.Start(infra.Lifecycle); err != nil {
		log.Fatal("server start failed: ", err)
	}

	infra.Lifecycle.WaitForStartup()
	infra.Logger.Info("service started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	infra.Logger.Info("initiating shutdown")
	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		infra.Logger.Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}
	infra.Logger.Info("service stopped")
}
