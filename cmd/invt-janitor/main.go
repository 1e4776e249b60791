package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/InvtOut/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	config.SetupLogger(cfg.InvtOut)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RunInvtJanitor(ctx, cfg, os.Getenv("swaggerPath"), defaultJanitorFactories()); err != nil && err != context.Canceled {
		panic(err)
	}
}
