package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	apperr "github.com/Veysel440/go-auth-smoke/internal/errors"
	"github.com/Veysel440/go-auth-smoke/internal/logging"
	"github.com/Veysel440/go-auth-smoke/internal/redisx"
	"github.com/Veysel440/go-auth-smoke/internal/server"
	otelsetup "github.com/Veysel440/go-auth-smoke/internal/trace"
)

func main() {
	cfg := config.Load()
	log := logging.New()
	apperr.SetLogger(log)

	shutdownTrace, err := otelsetup.Setup(context.Background(), cfg.OTELEndpoint, cfg.OTELSample, "authstub")
	if err != nil {
		log.Error("otel", slog.String("err", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := server.OpenStore(cfg)
	if err != nil {
		log.Error("store", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	rdb := redisx.New(cfg)
	if rdb != nil {
		if err := redisx.Ping(context.Background(), rdb); err != nil {
			log.Error("redis", slog.String("addr", cfg.RedisAddr), slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
	}

	srv := server.New(cfg, store, rdb).WithLogger(log)
	defer srv.Close()
	httpSrv := srv.HTTPServer()

	go func() {
		log.Info("authstub listening", slog.String("port", cfg.Port), slog.Bool("mysql", cfg.DBDsn != ""), slog.Bool("redis", rdb != nil))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = shutdownTrace(ctx)
	log.Info("stopped")
}
