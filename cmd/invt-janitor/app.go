package main

import (
	"context"
	"time"

	"github.com/BearBump/InvtOut/config"
	"github.com/BearBump/InvtOut/internal/services/janitor"
)

type janitorFactories struct {
	newJanitor func(cfg *config.Config) *janitor.Janitor
	serveHTTP  func(ctx context.Context, opts janitorHTTPOpts) error
}

func defaultJanitorFactories() janitorFactories {
	return janitorFactories{
		newJanitor: func(cfg *config.Config) *janitor.Janitor {
			dir := cfg.InvtOut.ExportDir
			if dir == "" {
				dir = "export"
			}
			retention := time.Duration(cfg.InvtOut.JanitorRetentionSeconds) * time.Second
			interval := time.Duration(cfg.InvtOut.JanitorIntervalSeconds) * time.Second
			return janitor.New(dir).WithSettings(retention, interval)
		},
		serveHTTP: runJanitorHTTPServer,
	}
}

// RunInvtJanitor sweeps the export directory until ctx is done. The HTTP side only
// reports and triggers; if it stops, the sweeper stops too.
func RunInvtJanitor(parent context.Context, cfg *config.Config, swaggerPath string, f janitorFactories) error {
	j := f.newJanitor(cfg)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- f.serveHTTP(ctx, janitorHTTPOpts{
			httpAddr:    cfg.InvtOut.JanitorHTTPAddr,
			swaggerPath: swaggerPath,
			janitor:     j,
			cfg:         cfg,
		})
	}()

	// первая уборка сразу при старте, дальше по тикеру
	j.Trigger()

	runErr := make(chan error, 1)
	go func() { runErr <- j.Run(ctx) }()

	select {
	case err := <-runErr:
		cancel()
		<-httpErr
		return err
	case err := <-httpErr:
		cancel()
		<-runErr
		if err != nil {
			return err
		}
		return parent.Err()
	}
}
