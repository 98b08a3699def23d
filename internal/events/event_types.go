package events

import (
	"time"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventEmailDispatched     EventType = "email_dispatched"
	EventDatasetLoaded       EventType = "dataset_loaded"
	EventSystemReset         EventType = "system_reset"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  int                 `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// EmailDispatchedPayload payload.
type EmailDispatchedPayload struct {
	Email domain.Email `json:"email"`
}

// DatasetLoadedPayload payload.
type DatasetLoadedPayload struct {
	Table   string `json:"table"`
	Records int    `json:"records"`
}
