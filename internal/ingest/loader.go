package ingest

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/repository"
)

// Loader parses dataset uploads and replaces reference tables wholesale.
type Loader struct {
	reference  repository.ReferenceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewLoader constructs the loader.
func NewLoader(reference repository.ReferenceRepository, dispatcher events.Dispatcher, logger *zap.Logger) *Loader {
	return &Loader{reference: reference, dispatcher: dispatcher, logger: logger}
}

// Load ingests a CSV stream into the named table. The replacement is
// atomic from the rule engine's perspective: either the whole table swaps
// or nothing changes.
func (l *Loader) Load(ctx context.Context, table repository.Table, r io.Reader) (int, error) {
	records, count, err := Parse(table, r)
	if err != nil {
		return 0, err
	}
	if err := l.reference.BulkLoad(table, records); err != nil {
		return 0, err
	}
	l.logger.Info("dataset loaded",
		zap.String("table", string(table)),
		zap.Int("records", count))
	if l.dispatcher != nil {
		_ = l.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDatasetLoaded,
			Timestamp: time.Now(),
			Payload:   events.DatasetLoadedPayload{Table: string(table), Records: count},
		})
	}
	return count, nil
}
