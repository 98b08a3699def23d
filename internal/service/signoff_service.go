package service

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/domain"
)

var (
	ticketRefPattern    = regexp.MustCompile(`TT-(\d+)`)
	troubleFoundPattern = regexp.MustCompile(`Trouble Found: (.*)`)
	causePattern        = regexp.MustCompile(`Cause What/Who: (.*)`)
	actionTakenPattern  = regexp.MustCompile(`Action Taken: (.*)`)
)

// SignOffService drives the field sign-off resolution workflow: the field
// force reports a restoration, the NOC accepts it, the requester is
// notified and the ticket moves to Resolved.
type SignOffService struct {
	tickets       *TicketService
	notifications *NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewSignOffService constructs the service.
func NewSignOffService(tickets *TicketService, notifications *NotificationService, logger *zap.Logger) *SignOffService {
	return &SignOffService{
		tickets:       tickets,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// SubmitFieldSignOff dispatches the field-force restoration report for a
// ticket awaiting field work. The ticket status is not changed here; that
// happens only when the NOC accepts the sign-off. Returns false when the
// ticket is unknown or not in the Field WO Created state.
func (s *SignOffService) SubmitFieldSignOff(ctx context.Context, ticketID int, signOff domain.SignOff) bool {
	ticket, found := s.tickets.Get(ticketID)
	if !found || ticket.Status != domain.TicketStatusFieldWOCreated {
		return false
	}
	if signOff.DateRestored == "" {
		signOff.DateRestored = s.now().Format("02 Jan 2006 15:04")
	}
	s.notifications.SendFieldSignOffReport(ctx, ticket, signOff)
	s.logger.Info("field sign-off submitted", zap.Int("ticket_id", ticketID))
	return true
}

// AcceptSignOff processes an inbound field sign-off message: the ticket id
// is parsed from the subject, the three report fields are recovered from
// the body by labeled-line scanning (missing labels become "N/A"), then the
// field force is acknowledged, the requester receives the resolution notice
// and the ticket transitions to Resolved. A subject without a ticket
// reference, or a reference to an unknown ticket, is silently ignored.
func (s *SignOffService) AcceptSignOff(ctx context.Context, email domain.Email) bool {
	match := ticketRefPattern.FindStringSubmatch(email.Subject)
	if match == nil {
		return false
	}
	ticketID, err := strconv.Atoi(match[1])
	if err != nil {
		return false
	}
	ticket, found := s.tickets.Get(ticketID)
	if !found {
		s.logger.Debug("sign-off ignored for unknown ticket", zap.Int("ticket_id", ticketID))
		return false
	}

	troubleFound := extractLabeled(troubleFoundPattern, email.Body)
	cause := extractLabeled(causePattern, email.Body)
	actionTaken := extractLabeled(actionTakenPattern, email.Body)

	s.notifications.SendFieldAck(ctx, ticketID)
	s.notifications.SendResolution(ctx, ticket, troubleFound, cause, actionTaken)
	_, _ = s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusResolved)

	s.logger.Info("sign-off accepted", zap.Int("ticket_id", ticketID))
	return true
}

func extractLabeled(pattern *regexp.Regexp, body string) string {
	if match := pattern.FindStringSubmatch(body); match != nil {
		return match[1]
	}
	return "N/A"
}
