package repository

import (
	"sync"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// TicketRepository is the append-only session ticket log. Tickets are never
// deleted; a full reset clears the log and restores the id counter.
type TicketRepository interface {
	Create(ticket *domain.Ticket)
	GetByID(id int) (domain.Ticket, bool)
	UpdateStatus(id int, status domain.TicketStatus) bool
	List() []domain.Ticket
	OpenByService(sid domain.ServiceID) (domain.Ticket, bool)
	Reset()
}

type ticketRepository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	nextID  int
}

// NewTicketRepository instantiates the log with the monotonic id seed.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{nextID: domain.FirstTicketID}
}

// Create assigns the next monotonic id and appends the ticket.
func (r *ticketRepository) Create(ticket *domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets = append(r.tickets, *ticket)
}

func (r *ticketRepository) GetByID(id int) (domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// UpdateStatus applies the new status and reports whether the id was known.
// Unknown ids are a no-op by contract, not an error.
func (r *ticketRepository) UpdateStatus(id int, status domain.TicketStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].Status = status
			return true
		}
	}
	return false
}

func (r *ticketRepository) List() []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Ticket(nil), r.tickets...)
}

// OpenByService returns the first unresolved session ticket for a service.
func (r *ticketRepository) OpenByService(sid domain.ServiceID) (domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.ServiceID == sid && t.Status != domain.TicketStatusResolved {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (r *ticketRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = nil
	r.nextID = domain.FirstTicketID
}
