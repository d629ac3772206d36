package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abelbrown/georisk/internal/model"
	"github.com/abelbrown/georisk/internal/store"
	"github.com/abelbrown/georisk/internal/ui"
)

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	common := addCommonFlags(fs)
	date := fs.String("date", "", "archived report date (YYYY-MM-DD); latest when empty")
	width := fs.Int("width", 100, "wrap width, 0 disables wrapping")
	raw := fs.Bool("json", false, "print stored JSON instead of rendering")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(common)
	st := openStore(cfg)
	defer store.Close(st)

	key := store.LatestKey
	if *date != "" {
		day, err := time.Parse(model.DayFormat, *date)
		if err != nil {
			log.Fatalf("invalid -date %q: want YYYY-MM-DD", *date)
		}
		key = store.ArchiveKey(day)
	}

	data, err := st.Read(context.Background(), key)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "no report stored yet; run 'georisk run' first")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("failed to read report: %v", err)
	}
	if *raw {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}

	var report model.RiskReport
	if err := json.Unmarshal(data, &report); err != nil {
		log.Fatalf("stored report is corrupt: %v", err)
	}
	fmt.Print(ui.RenderReport(report, *width))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(os.Args[1:])

	cfg := loadConfig(common)
	st := openStore(cfg)
	defer store.Close(st)

	status, err := store.ReadStatus(context.Background(), st)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("no runs recorded")
		return
	}
	if err != nil {
		log.Fatalf("failed to read status: %v", err)
	}
	fmt.Println(ui.RenderStatus(status, time.Now()))
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(os.Args[1:])

	cfg := loadConfig(common)
	st := openStore(cfg)
	defer store.Close(st)

	days, err := store.History(context.Background(), st)
	if err != nil {
		log.Fatalf("failed to list history: %v", err)
	}
	fmt.Printf("Archived reports (%d):\n", len(days))
	for _, d := range days {
		fmt.Printf("  %s\n", d)
	}
}
