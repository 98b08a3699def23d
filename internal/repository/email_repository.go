package repository

import (
	"sync"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// Mailbox names a logical inbox view.
type Mailbox string

const (
	MailboxNOC        Mailbox = "noc"
	MailboxCSC        Mailbox = "csc"
	MailboxFieldForce Mailbox = "field"
	MailboxRSP        Mailbox = "rsp"
)

// EmailRepository is the append-only dispatched message log.
type EmailRepository interface {
	Append(email domain.Email)
	GetByID(id string) (domain.Email, bool)
	List() []domain.Email
	ListForMailbox(box Mailbox, internal []string) []domain.Email
	Reset()
}

type emailRepository struct {
	mu     sync.RWMutex
	emails []domain.Email
}

// NewEmailRepository instantiates an empty log.
func NewEmailRepository() EmailRepository {
	return &emailRepository{}
}

func (r *emailRepository) Append(email domain.Email) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
}

func (r *emailRepository) GetByID(id string) (domain.Email, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.emails {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Email{}, false
}

func (r *emailRepository) List() []domain.Email {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Email(nil), r.emails...)
}

// ListForMailbox filters the log per inbox account. NOC and field-force
// views include both directions of their traffic; the RSP partner view is
// everything not addressed to an internal mailbox. The internal slice names
// the configured internal addresses, NOC first, CSC second, field third.
func (r *emailRepository) ListForMailbox(box Mailbox, internal []string) []domain.Email {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var noc, csc, field string
	if len(internal) > 0 {
		noc = internal[0]
	}
	if len(internal) > 1 {
		csc = internal[1]
	}
	if len(internal) > 2 {
		field = internal[2]
	}

	var out []domain.Email
	for _, e := range r.emails {
		switch box {
		case MailboxNOC:
			if e.To == noc || e.From == noc {
				out = append(out, e)
			}
		case MailboxCSC:
			if e.To == csc {
				out = append(out, e)
			}
		case MailboxFieldForce:
			if e.To == field || e.From == field {
				out = append(out, e)
			}
		case MailboxRSP:
			if e.To != noc && e.To != csc && e.To != field {
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *emailRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = nil
}
