package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-relay/internal/infrastructure/exchange"
	"signal-relay/internal/infrastructure/logger"
	"signal-relay/internal/infrastructure/storage"
	"signal-relay/internal/usecase"
	"signal-relay/internal/web"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange struct {
		RESTEndpoint     string `yaml:"rest_endpoint"`
		HTTPTimeoutMs    int    `yaml:"http_timeout_ms"`
		MetadataReloadMs int    `yaml:"metadata_reload_ms"`
	} `yaml:"exchange"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// Optional .env overlay for local runs
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "relay.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	baseURL := cfg.Exchange.RESTEndpoint
	if baseURL == "" {
		baseURL = exchange.BybitBaseURL
	}
	gateway := exchange.NewBybitGateway(baseURL, time.Duration(cfg.Exchange.HTTPTimeoutMs)*time.Millisecond)

	sizer := usecase.NewPositionSizer(store)
	svc := usecase.NewRelayService(gateway, exchange.NewComposer(), sizer, log)

	// One context for shutdown; receiving the signal in more than one
	// place would race for the single delivered value.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Refresh instrument lot-size metadata now and on an interval, so the
	// sizer can truncate quantities to valid steps.
	refreshInstruments(ctx, gateway, store, log)
	reloadMs := cfg.Exchange.MetadataReloadMs
	if reloadMs <= 0 {
		reloadMs = int(time.Hour / time.Millisecond)
	}
	go refreshLoop(ctx, time.Duration(reloadMs)*time.Millisecond, gateway, store, log)

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(port, svc, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}

func refreshLoop(ctx context.Context, interval time.Duration, gateway *exchange.BybitGateway, store *storage.SQLiteStore, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refreshInstruments(ctx, gateway, store, log)
		case <-ctx.Done():
			return
		}
	}
}

func refreshInstruments(ctx context.Context, gateway *exchange.BybitGateway, store *storage.SQLiteStore, log *zap.Logger) {
	instruments, err := gateway.GetInstruments(ctx)
	if err != nil {
		log.Error("Failed to fetch instruments", zap.Error(err))
		return
	}
	for i := range instruments {
		if err := store.SaveInstrument(ctx, &instruments[i]); err != nil {
			log.Error("Failed to save instrument", zap.String("symbol", instruments[i].Symbol), zap.Error(err))
		}
	}
	log.Info("Instrument metadata refreshed", zap.Int("count", len(instruments)))
}
