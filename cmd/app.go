package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"safetyshare/internal/components"
	"safetyshare/internal/config"
)

func Run() error {
	logger := components.SetupLogger(os.Getenv("ENV"))

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(appCtx)
	if err != nil {
		logger.Error("load config failed", "err", err)
		return err
	}

	comps, err := components.InitComponents(appCtx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", "err", err)
		return err
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := comps.HttpServer.Run(ctx); err != nil {
			logger.Error("http server failed", "err", err)
		}
		logger.Info("http server stopped")
	}()

	if comps.Broadcaster != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comps.Broadcaster.Run(ctx)
			logger.Info("broadcast worker stopped")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		comps.Sweeper.Run(ctx)
		logger.Info("sweeper stopped")
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChan

	stop()
	logger.Info("captured signal, initiating shutdown", "signal", sig.String())

	wg.Wait()

	logger.Info("shutting down the services...")
	comps.ShutdownAll()
	logger.Info("gracefully shutting down the servers")

	return nil
}
