package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/store"
)

func runOnce() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	common := addCommonFlags(fs)
	stats := fs.Bool("stats", false, "Print stage counts to stderr")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(common)
	st := openStore(cfg)
	defer store.Close(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := buildPipeline(cfg, st, metrics.New())
	res, err := p.Run(ctx)
	if *stats {
		s := res.Stats
		fmt.Fprintf(os.Stderr, "raw %d  normalized %d  filtered %d  deduped %d  selected %d\n",
			s.Raw, s.Normalized, s.Filter.Kept, s.Deduped, s.Selected)
		for _, src := range s.Sources {
			status := "ok"
			if src.Err != nil {
				status = src.Err.Error()
			}
			fmt.Fprintf(os.Stderr, "  %-28s %-8s %4d  %s\n", src.Name, src.Channel, src.Records, status)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}

	os.Stdout.Write(res.Raw)
	fmt.Println()
}
