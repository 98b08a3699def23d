package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// ArchiveRepository mirrors session activity into Postgres for audit. The
// in-memory log remains the source of truth; the archive is insert-only and
// disabled when no pool is configured.
type ArchiveRepository interface {
	ArchiveTicket(ctx context.Context, ticket domain.Ticket) error
	ArchiveStatusChange(ctx context.Context, ticketID int, oldStatus, newStatus domain.TicketStatus) error
	ArchiveEmail(ctx context.Context, email domain.Email) error
	Enabled() bool
}

type archiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository instantiates the repository. A nil pool yields a
// disabled archive whose writes are no-ops.
func NewArchiveRepository(pool *pgxpool.Pool) ArchiveRepository {
	return &archiveRepository{pool: pool}
}

func (r *archiveRepository) Enabled() bool {
	return r.pool != nil
}

func (r *archiveRepository) ArchiveTicket(ctx context.Context, ticket domain.Ticket) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO ticket_archive (ticket_id, service_id, requester_email, customer_name, address,
            mobile_number, issue_reported, connection_type, priority, status, wo_number, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		string(ticket.ServiceID),
		ticket.RequesterEmail,
		ticket.CustomerName,
		ticket.Address,
		ticket.MobileNumber,
		ticket.IssueReported,
		string(ticket.ConnectionType),
		string(ticket.Priority),
		string(ticket.Status),
		ticket.WONumber,
		ticket.CreatedAt,
	)
	return err
}

func (r *archiveRepository) ArchiveStatusChange(ctx context.Context, ticketID int, oldStatus, newStatus domain.TicketStatus) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO ticket_status_archive (ticket_id, old_status, new_status)
        VALUES ($1,$2,$3)`
	_, err := r.pool.Exec(ctx, query, ticketID, string(oldStatus), string(newStatus))
	return err
}

func (r *archiveRepository) ArchiveEmail(ctx context.Context, email domain.Email) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO email_archive (email_id, sender, recipient, subject, body, dispatched_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		email.ID,
		email.From,
		email.To,
		email.Subject,
		email.Body,
		email.Timestamp,
	)
	return err
}
