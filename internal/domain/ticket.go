package domain

import "time"

// TicketStatus enumerates lifecycle states for trouble tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "Open"
	TicketStatusResolved       TicketStatus = "Resolved"
	TicketStatusOnHold         TicketStatus = "On Hold"
	TicketStatusCSCAssigned    TicketStatus = "CSC Assigned"
	TicketStatusFieldWOCreated TicketStatus = "Field WO Created"
)

// ConnectionType distinguishes business from residential services.
type ConnectionType string

const (
	ConnectionTypeBusiness    ConnectionType = "Business"
	ConnectionTypeResidential ConnectionType = "Residential"
)

// TicketPriority enumerates fault urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "Critical/ Medical Dependency"
	TicketPriorityNormal   TicketPriority = "Normal"
)

// TicketRequest is the validated RSP submission payload.
type TicketRequest struct {
	ServiceID      ServiceID
	RequesterEmail string
	CustomerName   string
	Address        string
	MobileNumber   string
	IssueReported  string
	ConnectionType ConnectionType
	Priority       TicketPriority
}

// Ticket is the aggregate for logged trouble tickets. Tickets are appended
// to the session log and mutated only through status transitions.
type Ticket struct {
	TicketRequest
	ID        int
	Status    TicketStatus
	CreatedAt time.Time
	WONumber  string
}

// FirstTicketID seeds the monotonic session ticket counter.
const FirstTicketID = 1700001
