// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/embedding"
	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/store"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Store    store.Store
	Embedder embedding.Embedder
	Logger   *slog.Logger
	Metrics  *metrics.Collector

	// Per-call deadlines for the embedding provider and the store. Every
	// dependency call gets its own derived context so one slow dependency
	// cannot consume the whole request budget of the next.
	EmbedTimeout time.Duration
	StoreTimeout time.Duration
}

// embedContext derives a context bounded by the embedding timeout.
func (d *Dependencies) embedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.EmbedTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.EmbedTimeout)
}

// storeContext derives a context bounded by the store timeout.
func (d *Dependencies) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.StoreTimeout)
}

// record reports one dependency call to the collector, if one is wired.
func (d *Dependencies) record(op string, start time.Time, err error) {
	if d.Metrics != nil {
		d.Metrics.Record(op, time.Since(start), err)
	}
}
