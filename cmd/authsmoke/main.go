package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/Veysel440/go-auth-smoke/internal/logging"
	"github.com/Veysel440/go-auth-smoke/internal/smoke"
	otelsetup "github.com/Veysel440/go-auth-smoke/internal/trace"
)

func main() {
	cfg := config.Load()
	log := logging.New()

	ctx := context.Background()
	shutdown, err := otelsetup.Setup(ctx, cfg.OTELEndpoint, cfg.OTELSample, "authsmoke")
	if err != nil {
		log.Warn("tracing disabled", slog.String("err", err.Error()))
		shutdown = func(context.Context) error { return nil }
	}

	ok, err := smoke.New(cfg, os.Stdout, log).Run(ctx, os.Stdin)

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = shutdown(sctx)
	cancel()

	if err != nil {
		log.Error("smoke run failed", slog.String("api", cfg.APIBase), slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("smoke run finished", slog.String("api", cfg.APIBase), slog.Bool("login_ok", ok))
}
