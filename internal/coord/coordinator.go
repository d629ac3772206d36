// Package coord fans connector fetches out over a bounded worker pool.
package coord

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/georisk/internal/feeds"
	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/model"
)

// DefaultTimeout bounds each individual connector fetch.
const DefaultTimeout = 12 * time.Second

// DefaultConcurrency limits parallel fetches.
const DefaultConcurrency = 4

// SourceResult is the outcome of one connector fetch.
type SourceResult struct {
	Name     string
	Channel  model.Channel
	Records  int
	Err      error
	Duration time.Duration
}

// Coordinator fetches every connector once per Collect call.
// A failing or hung connector never blocks the others.
type Coordinator struct {
	sources     []feeds.Source // IMMUTABLE: set at construction
	timeout     time.Duration
	concurrency int
	metrics     *metrics.Metrics // optional
}

// New creates a Coordinator. Zero timeout or concurrency selects the defaults.
func New(sources []feeds.Source, timeout time.Duration, concurrency int, m *metrics.Metrics) *Coordinator {
	sourcesCopy := make([]feeds.Source, len(sources))
	copy(sourcesCopy, sources)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Coordinator{
		sources:     sourcesCopy,
		timeout:     timeout,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Sources returns the number of configured connectors.
func (c *Coordinator) Sources() int {
	return len(c.sources)
}

// Collect fetches all connectors in parallel and concatenates their records
// in connector order, whatever order the fetches finish in.
func (c *Coordinator) Collect(ctx context.Context) ([]model.RawRecord, []SourceResult) {
	batches := make([][]model.RawRecord, len(c.sources))
	results := make([]SourceResult, len(c.sources))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, src := range c.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = SourceResult{Name: src.Name(), Channel: src.Channel(), Err: ctx.Err()}
				return nil
			}
			batches[i], results[i] = c.fetchSource(ctx, src)
			return nil // never fail the group, errors are reported per source
		})
	}
	_ = g.Wait()

	var total int
	for _, b := range batches {
		total += len(b)
	}
	all := make([]model.RawRecord, 0, total)
	for _, b := range batches {
		all = append(all, b...)
	}
	return all, results
}

// fetchSource fetches a single connector with its own timeout.
func (c *Coordinator) fetchSource(ctx context.Context, src feeds.Source) ([]model.RawRecord, SourceResult) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	records, err := src.Fetch(fetchCtx)
	res := SourceResult{
		Name:     src.Name(),
		Channel:  src.Channel(),
		Err:      err,
		Duration: time.Since(start),
	}
	c.metrics.ConnectorFetch(string(src.Channel()), err)

	if err != nil {
		logging.Warn("connector fetch failed", "source", res.Name, "channel", res.Channel, "error", err)
		return nil, res
	}

	for i := range records {
		if records[i].Channel == "" {
			records[i].Channel = src.Channel()
		}
		if records[i].Source == "" {
			records[i].Source = src.Name()
		}
	}
	res.Records = len(records)
	logging.Debug("connector fetched", "source", res.Name, "channel", res.Channel,
		"records", res.Records, "took", res.Duration.Round(time.Millisecond))
	return records, res
}
