package dto

import (
	"github.com/spec-kit/noc-intake/internal/domain"
)

// EvaluateRequest payload.
type EvaluateRequest struct {
	ServiceID string `json:"service_id"`
}

// VerdictResponse carries a rule chain decision.
type VerdictResponse struct {
	Allowed           bool   `json:"allowed"`
	Severity          string `json:"severity"`
	Message           string `json:"message"`
	CopyableReference string `json:"copyable_reference,omitempty"`
	Rule              string `json:"rule"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ServiceID      string                `json:"service_id"`
	RequesterEmail string                `json:"requester_email"`
	CustomerName   string                `json:"customer_name"`
	Address        string                `json:"address"`
	MobileNumber   string                `json:"mobile_number"`
	IssueReported  string                `json:"issue_reported"`
	ConnectionType domain.ConnectionType `json:"connection_type"`
	Priority       domain.TicketPriority `json:"priority"`
}

// ToDomain maps the payload to the domain request.
func (r CreateTicketRequest) ToDomain() domain.TicketRequest {
	return domain.TicketRequest{
		ServiceID:      domain.ServiceID(r.ServiceID),
		RequesterEmail: r.RequesterEmail,
		CustomerName:   r.CustomerName,
		Address:        r.Address,
		MobileNumber:   r.MobileNumber,
		IssueReported:  r.IssueReported,
		ConnectionType: r.ConnectionType,
		Priority:       r.Priority,
	}
}

// TicketResponse is the public view of a session ticket.
type TicketResponse struct {
	ID             int                   `json:"id"`
	ServiceID      string                `json:"service_id"`
	RequesterEmail string                `json:"requester_email"`
	CustomerName   string                `json:"customer_name"`
	Address        string                `json:"address"`
	MobileNumber   string                `json:"mobile_number"`
	IssueReported  string                `json:"issue_reported"`
	ConnectionType domain.ConnectionType `json:"connection_type"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	WONumber       string                `json:"wo_number,omitempty"`
	CreatedAt      string                `json:"created_at"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}
