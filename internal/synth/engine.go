// Package synth turns ranked candidates into a validated RiskReport using a
// language model, with retry, failover and once-per-day persistence.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/georisk/internal/brain"
	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/model"
	"github.com/abelbrown/georisk/internal/ranking"
	"github.com/abelbrown/georisk/internal/store"
)

// Engine runs the synthesis state machine. Zero-valued knobs get defaults
// from NewEngine; tests replace Rand, Sleep and Now directly.
type Engine struct {
	Store     store.Store
	Primary   brain.Provider
	Secondary brain.Provider
	Metrics   *metrics.Metrics

	Rand  Rand
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per provider call
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// Result is one synthesis outcome. Raw is the exact stored JSON.
type Result struct {
	Report model.RiskReport
	Raw    []byte
	Cached bool
}

// NewEngine builds an engine from config. Either provider may be nil.
func NewEngine(cfg config.SynthesisConfig, st store.Store, primary, secondary brain.Provider) *Engine {
	e := &Engine{
		Store:       st,
		Primary:     primary,
		Secondary:   secondary,
		Rand:        globalRand{},
		Sleep:       sleepContext,
		Now:         time.Now,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		MinDelay:    cfg.MinDelay,
		MaxDelay:    cfg.MaxDelay,
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = 3
	}
	if e.MaxDelay < e.MinDelay {
		e.MaxDelay = e.MinDelay
	}
	return e
}

// Existing returns the stored report bytes for day, if any.
func (e *Engine) Existing(ctx context.Context, day time.Time) ([]byte, bool, error) {
	key := store.ArchiveKey(day)
	ok, err := e.Store.Exists(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := e.Store.Read(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Synthesize returns today's report, generating and persisting it only when
// none exists yet. runID is recorded in the report metadata.
func (e *Engine) Synthesize(ctx context.Context, cands []ranking.Candidate, runID string) (Result, error) {
	now := e.now()

	if res, ok, err := e.Stored(ctx, now); err != nil || ok {
		if ok {
			e.Metrics.Synthesis("cached")
		}
		return res, err
	}

	first, second, err := e.selectProviders()
	if err != nil {
		e.Metrics.Synthesis("failed")
		return Result{}, err
	}

	req := BuildPrompt(now, cands, e.Temperature, e.MaxTokens)
	log := logging.WithPrefix("synth")
	log.Info("synthesis started", "provider", first.Name(), "candidates", len(cands))

	report, resp, attempts, err := e.withRetries(ctx, first, req, now)
	usedFallback := false
	provider := first
	if err != nil {
		exhausted := &ExhaustedError{Provider: first.Name(), Attempts: attempts, Err: err}
		if second == nil || ctx.Err() != nil {
			e.Metrics.Synthesis("failed")
			return Result{}, exhausted
		}
		log.Warn("primary provider exhausted, failing over",
			"provider", first.Name(), "fallback", second.Name(), "error", err)

		var ferr error
		report, resp, ferr = e.call(ctx, second, req, now)
		if ferr != nil {
			e.Metrics.Synthesis("failed")
			return Result{}, &FailoverError{
				Primary:     first.Name(),
				Fallback:    second.Name(),
				PrimaryErr:  exhausted,
				FallbackErr: ferr,
			}
		}
		usedFallback = true
		provider = second
		attempts++
	}

	model.SortRisks(report.Risks)
	report.LastUpdated = model.Day(now)
	report.Meta = model.Meta{
		Provider:     provider.Name(),
		Model:        resp.Model,
		UsedFallback: usedFallback,
		Attempts:     attempts,
		RunID:        runID,
	}

	res, err := e.persist(ctx, now, report)
	if err != nil {
		e.Metrics.Synthesis("failed")
		return Result{}, err
	}
	if res.Cached {
		e.Metrics.Synthesis("cached")
		return res, nil
	}
	if usedFallback {
		e.Metrics.Synthesis("fallback")
	} else {
		e.Metrics.Synthesis("primary")
	}
	log.Info("synthesis complete", "provider", provider.Name(), "fallback", usedFallback,
		"attempts", attempts, "risks", len(report.Risks), "index", report.GeopoliticalRiskIndex)
	return res, nil
}

// Stored returns the decoded report already stored for now's calendar day.
func (e *Engine) Stored(ctx context.Context, now time.Time) (Result, bool, error) {
	data, ok, err := e.Existing(ctx, now)
	if err != nil {
		return Result{}, false, fmt.Errorf("check existing report: %w", err)
	}
	if !ok {
		return Result{}, false, nil
	}
	var report model.RiskReport
	if err := json.Unmarshal(data, &report); err != nil {
		return Result{}, false, fmt.Errorf("decode stored report %s: %w", store.ArchiveKey(now), err)
	}
	logging.Info("report already exists", "day", model.Day(now), "provider", report.Meta.Provider)
	return Result{Report: report, Raw: data, Cached: true}, true, nil
}

// selectProviders picks the primary and optional fallback. With two
// available providers the order is randomized.
func (e *Engine) selectProviders() (brain.Provider, brain.Provider, error) {
	var avail []brain.Provider
	for _, p := range []brain.Provider{e.Primary, e.Secondary} {
		if p != nil && p.Available() {
			avail = append(avail, p)
		}
	}
	switch len(avail) {
	case 0:
		return nil, nil, ErrNoProvider
	case 1:
		return avail[0], nil, nil
	}
	if e.rand().Intn(2) == 1 {
		return avail[1], avail[0], nil
	}
	return avail[0], avail[1], nil
}

func (e *Engine) withRetries(ctx context.Context, p brain.Provider, req brain.Request, now time.Time) (model.RiskReport, brain.Response, int, error) {
	var lastErr error
	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		report, resp, err := e.call(ctx, p, req, now)
		if err == nil {
			return report, resp, attempt, nil
		}
		lastErr = err
		logging.Warn("provider attempt failed", "provider", p.Name(), "attempt", attempt, "error", err)
		if attempt == e.MaxAttempts {
			return model.RiskReport{}, brain.Response{}, attempt, lastErr
		}
		delay := Backoff(e.rand(), attempt, e.MinDelay, e.MaxDelay)
		if err := e.sleep(ctx, delay); err != nil {
			return model.RiskReport{}, brain.Response{}, attempt, fmt.Errorf("%w (retry interrupted: %v)", lastErr, err)
		}
	}
	return model.RiskReport{}, brain.Response{}, e.MaxAttempts, lastErr
}

// call is one Calling → Parsing → Validating pass.
func (e *Engine) call(ctx context.Context, p brain.Provider, req brain.Request, now time.Time) (model.RiskReport, brain.Response, error) {
	cctx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	resp, err := p.Generate(cctx, req)
	if err != nil {
		e.Metrics.ProviderCall(p.Name(), err)
		return model.RiskReport{}, resp, err
	}

	payload, how, err := Parse(resp.Content)
	if err != nil {
		e.Metrics.ProviderInvalid(p.Name())
		return model.RiskReport{}, resp, err
	}
	report, warns, err := Validate(payload, now)
	for _, w := range warns {
		logging.Warn("report validation warning", "provider", p.Name(), "warning", w)
	}
	if err != nil {
		e.Metrics.ProviderInvalid(p.Name())
		return model.RiskReport{}, resp, err
	}
	e.Metrics.ProviderCall(p.Name(), nil)
	logging.Debug("model response accepted", "provider", p.Name(), "strategy", how)
	return report, resp, nil
}

// persist writes the archive copy then latest. A report written for the same
// day by a concurrent run is returned instead of overwriting it.
func (e *Engine) persist(ctx context.Context, now time.Time, report model.RiskReport) (Result, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode report: %w", err)
	}

	if res, ok, err := e.Stored(ctx, now); err != nil || ok {
		if ok {
			logging.Warn("concurrent run stored a report first, discarding ours", "day", model.Day(now))
		}
		return res, err
	}

	if err := e.Store.Write(ctx, store.ArchiveKey(now), data); err != nil {
		return Result{}, fmt.Errorf("write archive: %w", err)
	}
	if err := e.Store.Write(ctx, store.LatestKey, data); err != nil {
		return Result{}, fmt.Errorf("write latest: %w", err)
	}
	return Result{Report: report, Raw: data}, nil
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) rand() Rand {
	if e.Rand == nil {
		return globalRand{}
	}
	return e.Rand
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return e.Sleep(ctx, d)
}
