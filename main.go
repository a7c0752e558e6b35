package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"diseasepredict/config"
	"diseasepredict/db"
	dhttp "diseasepredict/http"
	"diseasepredict/logging"
	"diseasepredict/ml"
	"diseasepredict/monitoring"
	"diseasepredict/paths"
	"diseasepredict/predictor"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml or ../config.yaml)")
	flag.Parse()

	// 1. Load config
	if *configPath == "" {
		*configPath = config.FindConfigFile("config.yaml", "../config.yaml")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	if *configPath == "" {
		logger.Info("no config file found, using defaults")
	} else {
		logger.Info("config loaded", zap.String("path", *configPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Load schema and model
	resolver := paths.New(cfg.Data.SearchRoots...)
	p, modelPath, err := predictor.Load(predictor.LoadConfig{
		DatasetPath: cfg.Data.Dataset,
		ModelType:   cfg.Model.Type,
		ModelPath:   cfg.Model.Path,
	}, predictor.Options{
		Resolver:         resolver,
		DescriptionsPath: cfg.Data.Descriptions,
		PrecautionsPath:  cfg.Data.Precautions,
		TopK:             cfg.Model.TopK,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal("failed to load predictor", zap.Error(err))
	}

	// 3. Prediction history
	history, err := db.Open(ctx, cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		logger.Fatal("failed to open history store", zap.String("driver", cfg.History.Driver), zap.Error(err))
	}
	if history != nil {
		defer history.Close()
		logger.Info("prediction history enabled", zap.String("driver", cfg.History.Driver))
	}

	// 4. Prediction feed and metrics
	hub := monitoring.NewHub(cfg.Http.AllowedOrigins, logger)
	go hub.Run(ctx)
	metrics := monitoring.NewMetrics()

	if cfg.Model.Watch {
		watcher := ml.NewModelWatcher(p.Model(), cfg.Model.Type, modelPath, func(c ml.Classifier) error {
			return ml.CheckCompatibility(c, p.Schema())
		}, logger)
		watcher.OnReload(func(c ml.Classifier) {
			metrics.RecordModelReload()
			hub.Publish(monitoring.ModelReloaded, monitoring.ModelReloadedMessage{
				Path:      modelPath,
				Classes:   c.NumClasses(),
				Timestamp: time.Now(),
			})
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("model watcher stopped", zap.Error(err))
			}
		}()
	}

	// 5. Start HTTP server
	api := dhttp.NewAPI(p, dhttp.APIOptions{
		Sessions: dhttp.NewSessionStore(p, cfg.Sessions.Size, cfg.Sessions.TTL),
		History:  history,
		Hub:      hub,
		Metrics:  metrics,
		Logger:   logger,
	})
	server := dhttp.NewServer(dhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, api, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 6. Handle graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
	if ctx.Err() == nil {
		os.Exit(1)
	}
}
