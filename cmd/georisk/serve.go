package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/server"
	"github.com/abelbrown/georisk/internal/store"
)

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	common := addCommonFlags(fs)
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(common)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	st := openStore(cfg)
	defer store.Close(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	m := metrics.New()
	srv := server.New(ctx, buildPipeline(cfg, st, m), st, m, cfg.Server.AllowOrigins)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
