package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/repository"
)

// NotificationService constructs structured outbound messages and appends
// them to the message log. It is a pure side-effecting sink: dispatch never
// fails and never blocks; delivery beyond the log is external.
//
// Subject lines and body layout are a boundary contract with the inbox
// collaborator and must not drift.
type NotificationService struct {
	emails     repository.EmailRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.MailboxConfig
	now        func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(emails repository.EmailRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.MailboxConfig) *NotificationService {
	return &NotificationService{
		emails:     emails,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Send assigns id and timestamp, appends to the log and emits an event.
func (n *NotificationService) Send(ctx context.Context, draft domain.Draft) domain.Email {
	email := domain.Email{
		ID:        uuid.NewString(),
		From:      draft.From,
		To:        draft.To,
		Subject:   draft.Subject,
		Body:      draft.Body,
		Timestamp: n.now().Format("02 Jan 2006 15:04"),
	}
	n.emails.Append(email)
	n.logger.Info("notification dispatched",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	n.publish(ctx, events.Event{
		Type:    events.EventEmailDispatched,
		Payload: events.EmailDispatchedPayload{Email: email},
	})
	return email
}

// SendWorkOrder dispatches the field work order for a routed ticket.
func (n *NotificationService) SendWorkOrder(ctx context.Context, ticket domain.Ticket) domain.Email {
	isBusiness := "No"
	if ticket.ConnectionType == domain.ConnectionTypeBusiness {
		isBusiness = "Yes"
	}
	body := fmt.Sprintf("WORK ORDER DETAILS\n------------------\nCustomer Job ID: %d\nService ID: %s\nWork Order Type: FAULTS\nSite Address: %s\nPrimary Incident Type: Reactive Maintenance\nIs Business Connection?: %s\nContact Name: %s\nPriority: %s\nMobile Phone: %s\nWork Order Information: %s",
		ticket.ID, ticket.ServiceID, ticket.Address, isBusiness, ticket.CustomerName, ticket.Priority, ticket.MobileNumber, ticket.IssueReported)
	return n.Send(ctx, domain.Draft{
		From:    n.cfg.NOC,
		To:      n.cfg.FieldForce,
		Subject: fmt.Sprintf("NEW WORK ORDER: TT-%d", ticket.ID),
		Body:    body,
	})
}

// SendFailedIntact dispatches the CSC escalation for a never-activated
// connection.
func (n *NotificationService) SendFailedIntact(ctx context.Context, ticket domain.Ticket) domain.Email {
	body := fmt.Sprintf("FAILED INTACT REPORT\n\nService ID: %s\nRequester: %s\nCustomer: %s\nAddress: %s\nMobile: %s\n\nPlease handle as Failed Intact.",
		ticket.ServiceID, ticket.RequesterEmail, ticket.CustomerName, ticket.Address, ticket.MobileNumber)
	return n.Send(ctx, domain.Draft{
		From:    n.cfg.NOC,
		To:      n.cfg.CSC,
		Subject: "FAILED INTACT",
		Body:    body,
	})
}

// SendFieldSignOffReport dispatches the field-force restoration report to
// the NOC mailbox.
func (n *NotificationService) SendFieldSignOffReport(ctx context.Context, ticket domain.Ticket, signOff domain.SignOff) domain.Email {
	body := fmt.Sprintf("Date and Time Service Restored: %s\nTrouble Found: %s\nCause What/Who: %s\nAction Taken: %s",
		signOff.DateRestored, signOff.TroubleFound, signOff.Cause, signOff.ActionTaken)
	return n.Send(ctx, domain.Draft{
		From:    n.cfg.FieldForce,
		To:      n.cfg.NOC,
		Subject: fmt.Sprintf("TT-%d", ticket.ID),
		Body:    body,
	})
}

// SendFieldAck acknowledges an accepted sign-off back to the field force.
func (n *NotificationService) SendFieldAck(ctx context.Context, ticketID int) domain.Email {
	return n.Send(ctx, domain.Draft{
		From:    n.cfg.NOC,
		To:      n.cfg.FieldForce,
		Subject: fmt.Sprintf("Re: TT-%d", ticketID),
		Body:    fmt.Sprintf("Sign-off for the TT--%d has been accepted.", ticketID),
	})
}

// SendResolution notifies the original requester, embedding the sign-off
// fields extracted from the field report.
func (n *NotificationService) SendResolution(ctx context.Context, ticket domain.Ticket, troubleFound, cause, actionTaken string) domain.Email {
	body := fmt.Sprintf(`The issue has been resolved. Please test with your customer.

Signoff as follows:

Issue Found: %s
Fault Cause Description: %s
Action Taken: %s

If you would like further information, please respond to this email, or contact us on 0800 123 456 option 9.

Kind regards,
Fibre Networks NOC`, troubleFound, cause, actionTaken)
	return n.Send(ctx, domain.Draft{
		From:    n.cfg.NOC,
		To:      ticket.RequesterEmail,
		Subject: fmt.Sprintf("RESOLVED: Ticket ID %d - %s", ticket.ID, ticket.ServiceID),
		Body:    body,
	})
}

func (n *NotificationService) publish(ctx context.Context, event events.Event) {
	if n.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = n.now()
	}
	_ = n.dispatcher.Publish(ctx, event)
}
