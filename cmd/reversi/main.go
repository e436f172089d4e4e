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

	"github.com/jaminalder/codex-reversi/internal/app"
	"github.com/jaminalder/codex-reversi/internal/config"
	"github.com/jaminalder/codex-reversi/internal/web"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	configFile = flag.String("f", "etc/reversi.yaml", "the config file")
	listenOn   = flag.String("h", "", "override the listen address")
)

func main() {
	flag.Parse()

	c, err := config.Load(*configFile)
	logx.Must(err)
	if *listenOn != "" {
		c.ListenOn = *listenOn
	}
	logx.MustSetup(c.Log)
	defer logx.Close()

	variant, err := c.DefaultVariant()
	logx.Must(err)

	svc := app.NewService()
	srv := &http.Server{
		Addr:              c.ListenOn,
		Handler:           web.NewServer(svc, web.WithDefaultVariant(variant), web.WithHeartbeat(c.HeartbeatInterval)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logx.Infof("Starting reversi server at %s (variant %s)...", c.ListenOn, variant.Name)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Must(err)
	}
}
