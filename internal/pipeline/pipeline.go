// Package pipeline wires one end-to-end run: fetch, normalize, filter,
// dedup, rank and synthesize, with the status object kept current.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/georisk/internal/brain"
	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/coord"
	"github.com/abelbrown/georisk/internal/dedup"
	"github.com/abelbrown/georisk/internal/feeds"
	"github.com/abelbrown/georisk/internal/filter"
	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/model"
	"github.com/abelbrown/georisk/internal/normalize"
	"github.com/abelbrown/georisk/internal/ranking"
	"github.com/abelbrown/georisk/internal/store"
	"github.com/abelbrown/georisk/internal/synth"
)

// ErrNoEvents means nothing survived filtering, so there is nothing to synthesize.
var ErrNoEvents = errors.New("pipeline: no candidate events")

// Stats describes how many items each stage produced.
type Stats struct {
	Sources    []coord.SourceResult `json:"-"`
	Raw        int                  `json:"raw"`
	Normalized int                  `json:"normalized"`
	Filter     filter.Stats         `json:"filter"`
	Deduped    int                  `json:"deduped"`
	Selected   int                  `json:"selected"`
}

// Result is the outcome of one run.
type Result struct {
	Report model.RiskReport
	Raw    []byte // stored JSON
	Cached bool   // today's report already existed
	RunID  string
	Stats  Stats
}

// Pipeline holds the stages. Build it with New.
type Pipeline struct {
	Store    store.Store
	Coord    *coord.Coordinator
	Filter   *filter.Filter
	Deduper  *dedup.Deduper
	Selector *ranking.Selector
	Engine   *synth.Engine
	Metrics  *metrics.Metrics

	Now   func() time.Time
	NewID func() string
}

// New assembles a pipeline from configuration and already-built collaborators.
func New(cfg *config.Config, st store.Store, sources []feeds.Source, primary, secondary brain.Provider, m *metrics.Metrics) *Pipeline {
	p := &Pipeline{
		Store:    st,
		Coord:    coord.New(sources, cfg.Fetch.Timeout, cfg.Fetch.MaxConcurrent, m),
		Filter:   filter.New(cfg.Filter),
		Deduper:  dedup.New(cfg.Dedup.Threshold, cfg.Ranking.PremiumSources),
		Selector: ranking.New(cfg.Ranking),
		Engine:   synth.NewEngine(cfg.Synthesis, st, primary, secondary),
		Metrics:  m,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
	p.Engine.Metrics = m
	p.Engine.Now = p.now
	return p
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Run executes one pipeline pass. It returns a complete report or an error,
// never a partial report. Connector failures are logged, not returned.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: p.NewID()}
	logging.Info("run started", "run", res.RunID)

	p.setStatus(ctx, res.RunID, model.StateProcessing, "run started")

	out, err := p.run(ctx, &res)
	if err != nil {
		logging.Error("run failed", "run", res.RunID, "error", err)
		p.setStatus(ctx, res.RunID, model.StateError, err.Error())
		p.Metrics.RunFinished(time.Since(start), 0, err)
		return res, err
	}

	msg := fmt.Sprintf("report for %s generated by %s", out.Report.LastUpdated, out.Report.Meta.Provider)
	if out.Cached {
		msg = fmt.Sprintf("report for %s already exists", out.Report.LastUpdated)
	}
	p.setStatus(ctx, res.RunID, model.StateCompleted, msg)
	p.Metrics.RunFinished(time.Since(start), out.Report.GeopoliticalRiskIndex, nil)
	logging.Info("run complete", "run", res.RunID, "cached", out.Cached,
		"risks", len(out.Report.Risks), "took", time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, res *Result) (Result, error) {
	now := p.now()

	// Skip fetching entirely when today's report exists.
	stored, ok, err := p.Engine.Stored(ctx, now)
	if err != nil {
		return *res, err
	}
	if ok {
		p.Metrics.Synthesis("cached")
		res.Report, res.Raw, res.Cached = stored.Report, stored.Raw, true
		return *res, nil
	}

	records, sources := p.Coord.Collect(ctx)
	res.Stats.Sources = sources
	res.Stats.Raw = len(records)
	p.Metrics.Events("raw", len(records))

	events := normalize.All(records, now)
	res.Stats.Normalized = len(events)
	p.Metrics.Events("normalized", len(events))

	events, fstats := p.Filter.Apply(events, now)
	res.Stats.Filter = fstats
	p.Metrics.Events("filtered", len(events))

	events = p.Deduper.Dedup(events)
	res.Stats.Deduped = len(events)
	p.Metrics.Events("deduped", len(events))

	cands := p.Selector.Select(events)
	res.Stats.Selected = len(cands)
	p.Metrics.Events("selected", len(cands))

	logging.Info("candidates ready", "run", res.RunID, "raw", res.Stats.Raw,
		"normalized", res.Stats.Normalized, "filtered", fstats.Kept,
		"deduped", res.Stats.Deduped, "selected", res.Stats.Selected)

	if len(cands) == 0 {
		return *res, ErrNoEvents
	}

	out, err := p.Engine.Synthesize(ctx, cands, res.RunID)
	if err != nil {
		return *res, err
	}
	res.Report, res.Raw, res.Cached = out.Report, out.Raw, out.Cached
	return *res, nil
}

// setStatus publishes the status object. Failures are logged only.
func (p *Pipeline) setStatus(ctx context.Context, runID string, state model.RunState, msg string) {
	st := model.Status{Status: state, Message: msg, Timestamp: p.now().UTC(), RunID: runID}
	if err := store.WriteStatus(ctx, p.Store, st); err != nil {
		logging.Warn("write status failed", "run", runID, "error", err)
	}
}
