package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stablefun/config"
	"stablefun/native/stable"
	"stablefun/observability/logging"
	"stablefun/observability/metrics"
	"stablefun/rpc"
	"stablefun/storage"
)

func main() {
	configPath := flag.String("config", "stabled.toml", "path to the TOML configuration file")
	listenFlag := flag.String("listen", "", "listen address override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("stabled", "", "info").Error("load config", "error", err)
		os.Exit(1)
	}
	if *listenFlag != "" {
		cfg.ListenAddress = *listenFlag
	}

	log := logging.Setup("stabled", cfg.Environment, cfg.LogLevel)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		log.Error("open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	engine := stable.NewEngine(stable.NewMemLedger(), cfg.Stable.Limits())
	engine.SetState(stable.NewStore(db))
	engine.SetMetrics(metrics.Stable())
	engine.SetOracleGuard(cfg.Stable.MaxPriceAge(), cfg.Stable.MaxPriceConfidence)
	for _, feedCfg := range cfg.Stable.Feeds {
		feed, err := feedCfg.BuildFeed()
		if err != nil {
			log.Error("configure feed", "feed", feedCfg.Ref, "error", err)
			os.Exit(1)
		}
		if err := engine.RegisterFeed(stable.Ref(feedCfg.Ref), feed); err != nil {
			log.Error("register feed", "feed", feedCfg.Ref, "error", err)
			os.Exit(1)
		}
		log.Info("feed registered", "feed", feedCfg.Ref, "mode", feedCfg.Mode)
	}

	server := rpc.NewServer(engine, log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", cfg.ListenAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			os.Exit(1)
		}
	}
}
