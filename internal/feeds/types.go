// Package feeds defines the connector contract and builds the configured
// connectors. Each subpackage talks to one kind of external channel.
package feeds

import (
	"context"

	"github.com/abelbrown/georisk/internal/model"
)

// Source is the interface all connectors implement.
type Source interface {
	// Name returns a human-readable connector name.
	Name() string

	// Channel returns which retrieval channel this connector feeds.
	Channel() model.Channel

	// Fetch retrieves the latest raw records. Implementations must honor
	// ctx cancellation; the caller applies the per-connector timeout.
	Fetch(ctx context.Context) ([]model.RawRecord, error)
}
