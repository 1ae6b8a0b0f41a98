package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bunasiem/config"
	"bunasiem/internal/alerts"
	"bunasiem/internal/api"
	"bunasiem/internal/ingest"
	inputredis "bunasiem/internal/input/redis"
	"bunasiem/internal/logger"
	"bunasiem/internal/metrics"
	"bunasiem/internal/output/alerthttp"
	"bunasiem/internal/output/alertjson"
	"bunasiem/internal/output/alertnats"
	"bunasiem/internal/reputation"
	"bunasiem/internal/rules"
	"bunasiem/internal/store"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("bunasiem.yml"); err == nil {
		return "bunasiem.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "bunasiem.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "bunasiem.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.BunaSIEM.Input.Redis.Addr == "" {
		cfg.BunaSIEM.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.BunaSIEM.Input.Redis.Key == "" {
		cfg.BunaSIEM.Input.Redis.Key = "security_logs"
	}
	if cfg.BunaSIEM.Input.Redis.BlockTimeout == 0 {
		cfg.BunaSIEM.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if cfg.BunaSIEM.API.Listen == "" {
		cfg.BunaSIEM.API.Listen = ":8080"
	}

	if cfg.BunaSIEM.Store.Mode == "" {
		cfg.BunaSIEM.Store.Mode = "memory"
	}
	if cfg.BunaSIEM.Store.Capacity <= 0 {
		cfg.BunaSIEM.Store.Capacity = store.DefaultCapacity
	}
	if cfg.BunaSIEM.Store.Postgres.Host == "" {
		cfg.BunaSIEM.Store.Postgres.Host = "127.0.0.1"
	}
	if cfg.BunaSIEM.Store.Postgres.Port == 0 {
		cfg.BunaSIEM.Store.Postgres.Port = 5432
	}

	if cfg.BunaSIEM.Reputation.Addr == "" {
		cfg.BunaSIEM.Reputation.Addr = cfg.BunaSIEM.Input.Redis.Addr
	}

	if cfg.BunaSIEM.Logging.Level == "" {
		cfg.BunaSIEM.Logging.Level = "info"
	}
}

func buildStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Mode {
	case "postgres":
		return store.NewPostgresStore(store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			SSLMode:  cfg.Postgres.SSLMode,
			Capacity: cfg.Capacity,
		})
	default:
		return store.NewMemoryStore(cfg.Capacity), nil
	}
}

func buildCatalog(cfg config.RulesConfig) *rules.Catalog {
	catalogRules := rules.BaselineRules()

	if cfg.Sigma.Enabled && strings.TrimSpace(cfg.Sigma.Path) != "" {
		sigmaRules, stats, err := rules.LoadSigmaRules(cfg.Sigma.Path)
		if err != nil {
			logger.Errorf("Failed to load Sigma rules from %s: %v", cfg.Sigma.Path, err)
			log.Fatalf("Failed to load Sigma rules: %v", err)
		}
		logger.Infof("Sigma rules loaded: loaded=%d skipped_complex=%d skipped_invalid=%d files=%d",
			stats.Loaded, stats.SkippedComplex, stats.SkippedInvalid, stats.TotalFiles)
		catalogRules = append(catalogRules, sigmaRules...)
	}

	return rules.NewCatalog(catalogRules...)
}

func loadSuspiciousIPs(cfg config.BunaSIEMConfig) []string {
	ips := append([]string{}, cfg.Rules.SuspiciousIPs...)

	if cfg.Reputation.Enabled {
		repStore, err := reputation.NewStore(reputation.Config{
			Addr:     cfg.Reputation.Addr,
			Password: cfg.Reputation.Password,
			DB:       cfg.Reputation.DB,
			Key:      cfg.Reputation.Key,
			Timeout:  cfg.Reputation.Timeout,
		})
		if err != nil {
			logger.Errorf("Failed to create reputation store: %v", err)
			return ips
		}
		defer repStore.Close()

		members, err := repStore.Load(context.Background())
		if err != nil {
			logger.Warnf("Reputation set unavailable, using static list only: %v", err)
			return ips
		}
		logger.Infof("Loaded %d addresses from the reputation set", len(members))
		ips = append(ips, members...)
	}

	return ips
}

func buildDispatcher(cfg config.AlertsConfig) *alerts.Dispatcher {
	dispatcher := alerts.NewDispatcher()

	for _, out := range cfg.Outputs {
		switch out.Mode {
		case "file":
			w, err := alertjson.NewWriter(out.File.Path)
			if err != nil {
				logger.Errorf("Failed to create alert file writer: %v", err)
				log.Fatalf("Failed to create alert file writer: %v", err)
			}
			dispatcher.Register("file", w)
			logger.Infof("Alert output: file (%s)", out.File.Path)
		case "http":
			w, err := alerthttp.NewWriter(alerthttp.Config{
				URL:     out.HTTP.URL,
				Timeout: out.HTTP.Timeout,
				Headers: out.HTTP.Headers,
			})
			if err != nil {
				logger.Errorf("Failed to create alert HTTP writer: %v", err)
				log.Fatalf("Failed to create alert HTTP writer: %v", err)
			}
			dispatcher.Register("http", w)
			logger.Infof("Alert output: http (%s)", out.HTTP.URL)
		case "nats":
			w, err := alertnats.NewWriter(alertnats.Config{
				URL:     out.NATS.URL,
				Subject: out.NATS.Subject,
			})
			if err != nil {
				logger.Errorf("Failed to create alert NATS writer: %v", err)
				log.Fatalf("Failed to create alert NATS writer: %v", err)
			}
			dispatcher.Register("nats", w)
			logger.Infof("Alert output: nats (%s)", out.NATS.Subject)
		default:
			log.Fatalf("Unknown alert output mode: %s", out.Mode)
		}
	}

	return dispatcher
}

func main() {
	configArg := ""
	if len(os.Args) > 1 {
		configArg = os.Args[1]
	}
	configPath := findConfigFile(configArg)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyDefaults(cfg)

	if err := logger.Init(cfg.BunaSIEM.Logging.Enabled, cfg.BunaSIEM.Logging.Level, cfg.BunaSIEM.Logging.File, cfg.BunaSIEM.Logging.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("BunaSIEM detection core starting")
	logger.Infof("Config loaded from: %s", configPath)

	backing, err := buildStore(cfg.BunaSIEM.Store)
	if err != nil {
		logger.Errorf("Failed to create backing store: %v", err)
		log.Fatalf("Failed to create backing store: %v", err)
	}
	logger.Infof("Store mode: %s (capacity %d)", cfg.BunaSIEM.Store.Mode, cfg.BunaSIEM.Store.Capacity)

	catalog := buildCatalog(cfg.BunaSIEM.Rules)
	logger.Infof("Rule catalog ready: %d rules (%s)", catalog.Len(), strings.Join(catalog.Names(), ", "))

	suspiciousIPs := loadSuspiciousIPs(cfg.BunaSIEM)
	logger.Infof("Suspicious IP set: %d addresses", len(suspiciousIPs))

	m := metrics.New()
	pipe := ingest.NewPipeline(catalog, backing, ingest.Config{SuspiciousIPs: suspiciousIPs}, m)

	dispatcher := buildDispatcher(cfg.BunaSIEM.Alerts)
	if len(dispatcher.Names()) > 0 {
		pipe.SetAlertSink(dispatcher)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runner *ingest.Runner
	if cfg.BunaSIEM.Input.Redis.Enabled {
		consumer, err := inputredis.NewConsumer(inputredis.Config{
			Addr:         cfg.BunaSIEM.Input.Redis.Addr,
			Password:     cfg.BunaSIEM.Input.Redis.Password,
			DB:           cfg.BunaSIEM.Input.Redis.DB,
			Key:          cfg.BunaSIEM.Input.Redis.Key,
			BlockTimeout: cfg.BunaSIEM.Input.Redis.BlockTimeout,
		})
		if err != nil {
			logger.Errorf("Failed to create Redis consumer: %v", err)
			log.Fatalf("Failed to create Redis consumer: %v", err)
		}
		runner = ingest.NewRunner(consumer, pipe)
		go func() {
			if err := runner.Run(ctx); err != nil && err != context.Canceled {
				logger.Errorf("Input runner error: %v", err)
			}
		}()
		logger.Infof("Redis input started: %s (%s)", cfg.BunaSIEM.Input.Redis.Addr, cfg.BunaSIEM.Input.Redis.Key)
	}

	var server *api.Server
	if cfg.BunaSIEM.API.Enabled {
		server = api.NewServer(pipe)
		go func() {
			if err := server.Start(cfg.BunaSIEM.API.Listen); err != nil {
				logger.Infof("API server stopped: %v", err)
			}
		}()
		logger.Infof("API listening on %s", cfg.BunaSIEM.API.Listen)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	cancel()
	time.Sleep(1 * time.Second)

	if server != nil {
		if err := server.Close(); err != nil {
			logger.Errorf("Error closing API server: %v", err)
		}
	}
	if runner != nil {
		if err := runner.Close(); err != nil {
			logger.Errorf("Error closing input runner: %v", err)
		}
	}
	if err := dispatcher.Close(); err != nil {
		logger.Errorf("Error closing alert outputs: %v", err)
	}
	if err := backing.Close(); err != nil {
		logger.Errorf("Error closing store: %v", err)
	}

	logger.Infof("BunaSIEM detection core stopped")
}
