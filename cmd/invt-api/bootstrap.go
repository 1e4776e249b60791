package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/InvtOut/config"
	"github.com/BearBump/InvtOut/internal/broker/kafka"
	"github.com/BearBump/InvtOut/internal/cache/rediscache"
	"github.com/BearBump/InvtOut/internal/services/invtout"
	"github.com/BearBump/InvtOut/internal/storage/pginvt"
	"github.com/redis/go-redis/v9"
)

type invtAPIApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   invtAPIOpts
	deps   invtAPIDeps

	producer *kafka.Producer
	redis    *redis.Client
	closeDB  func()
}

func mustBootstrapInvtAPI() *invtAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	logger := config.SetupLogger(cfg.InvtOut)

	httpAddr := cfg.InvtOut.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	exportDir := cfg.InvtOut.ExportDir
	if exportDir == "" {
		exportDir = "export"
	}
	topic := cfg.Kafka.SummaryExportedTopicName
	if topic == "" {
		topic = "invt.summary_exported"
	}

	st := mustOpenPostgresWithRetry(cfg.PostgresConnString(), 60*time.Second)
	if cfg.Database.InitSchema {
		if err := st.EnsureSchema(context.Background()); err != nil {
			panic(fmt.Sprintf("init schema: %v", err))
		}
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		panic(fmt.Sprintf("create export dir %s: %v", exportDir, err))
	}

	rdb := rediscache.NewClient(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	tokens := rediscache.New(rdb)

	svc := invtout.New(st, tokens, exportDir).
		WithStrictFaults(cfg.InvtOut.FaultsAsUnavailable).
		WithRateLimit(rediscache.NewRateLimiter(rdb), cfg.InvtOut.ExportRateLimitPerMinute)

	var producer *kafka.Producer
	if brokers := cfg.KafkaBrokers(); brokers != nil {
		producer = kafka.NewProducer(brokers)
		svc.WithPublisher(producer, topic)
	} else {
		slog.Info("kafka is not configured, export events are disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &invtAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: invtAPIOpts{
			httpAddr:            httpAddr,
			swaggerPath:         os.Getenv("swaggerPath"),
			faultsAsUnavailable: cfg.InvtOut.FaultsAsUnavailable,
		},
		deps: invtAPIDeps{
			svc:    svc,
			logger: logger,
			checks: []readinessCheck{
				{name: "postgres", p: st},
				{name: "redis", p: tokens},
			},
		},
		producer: producer,
		redis:    rdb,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pginvt.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pginvt.New(connString)
		if err == nil {
			if err = st.Ping(context.Background()); err == nil {
				return st
			}
			st.Close()
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *invtAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *invtAPIApp) Run() error {
	return runInvtAPI(a.ctx, a.opts, a.deps)
}
