// Package worker hosts background consumers of the in-process event stream.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/repository"
)

// ArchiveWorker mirrors session activity into the durable audit archive.
// Archival is best-effort: a failed write is logged and never blocks the
// workflow that produced the event.
type ArchiveWorker struct {
	archive repository.ArchiveRepository
	logger  *zap.Logger
}

// NewArchiveWorker constructs the worker.
func NewArchiveWorker(archive repository.ArchiveRepository, logger *zap.Logger) *ArchiveWorker {
	return &ArchiveWorker{archive: archive, logger: logger}
}

// Register subscribes the worker to the event stream.
func (w *ArchiveWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, w.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, w.onStatusChanged)
	dispatcher.Subscribe(events.EventEmailDispatched, w.onEmailDispatched)
}

func (w *ArchiveWorker) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	if err := w.archive.ArchiveTicket(ctx, payload.Ticket); err != nil {
		w.logger.Warn("ticket archive write failed",
			zap.Int("ticket_id", payload.Ticket.ID),
			zap.Error(err))
	}
	return nil
}

func (w *ArchiveWorker) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	if err := w.archive.ArchiveStatusChange(ctx, payload.TicketID, payload.OldStatus, payload.NewStatus); err != nil {
		w.logger.Warn("status archive write failed",
			zap.Int("ticket_id", payload.TicketID),
			zap.Error(err))
	}
	return nil
}

func (w *ArchiveWorker) onEmailDispatched(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EmailDispatchedPayload)
	if !ok {
		return nil
	}
	if err := w.archive.ArchiveEmail(ctx, payload.Email); err != nil {
		w.logger.Warn("email archive write failed",
			zap.String("email_id", payload.Email.ID),
			zap.Error(err))
	}
	return nil
}
