package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/engine"
	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/repository"
	apperrors "github.com/spec-kit/noc-intake/pkg/util"
)

// TransitionPolicy decides whether a status transition is legal. The
// reference workflow allows operators to override any state manually, so the
// default policy is permissive; strict deployments can reject transitions
// out of terminal states instead.
type TransitionPolicy func(from, to domain.TicketStatus) bool

// PermissiveTransitionPolicy allows any status to move to any other.
func PermissiveTransitionPolicy(from, to domain.TicketStatus) bool {
	return true
}

var strictTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:           {domain.TicketStatusOnHold, domain.TicketStatusCSCAssigned, domain.TicketStatusFieldWOCreated, domain.TicketStatusResolved},
	domain.TicketStatusOnHold:         {domain.TicketStatusOpen, domain.TicketStatusCSCAssigned, domain.TicketStatusFieldWOCreated, domain.TicketStatusResolved},
	domain.TicketStatusCSCAssigned:    {domain.TicketStatusOnHold, domain.TicketStatusResolved},
	domain.TicketStatusFieldWOCreated: {domain.TicketStatusOnHold, domain.TicketStatusResolved},
	domain.TicketStatusResolved:       {},
}

// StrictTransitionPolicy enforces the forward-only lifecycle: resolved
// tickets are terminal and work orders cannot be re-created from them.
func StrictTransitionPolicy(from, to domain.TicketStatus) bool {
	if from == to {
		return true
	}
	for _, candidate := range strictTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// TicketService coordinates the intake decision chain and the ticket
// lifecycle: evaluation, creation with routing, and status transitions.
type TicketService struct {
	tickets       repository.TicketRepository
	reference     repository.ReferenceRepository
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	transition    TransitionPolicy
	now           func() time.Time
	workOrderNum  func() string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	ReferenceRepo repository.ReferenceRepository
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Transition    TransitionPolicy
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	transition := deps.Transition
	if transition == nil {
		transition = PermissiveTransitionPolicy
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		reference:     deps.ReferenceRepo,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		transition:    transition,
		now:           time.Now,
		workOrderNum: func() string {
			return fmt.Sprintf("WO-%d", rand.Intn(1000000))
		},
	}
}

// Evaluate runs the diagnostic rule chain for a raw identifier. Partial
// identifiers never trigger evaluation and are rejected as validation
// failures.
func (s *TicketService) Evaluate(raw string) (engine.Result, error) {
	sid := domain.CanonicalServiceID(raw)
	if !sid.IsCanonical() {
		return engine.Result{}, apperrors.NewValidationError(
			fmt.Sprintf("service ID must be %d characters", domain.ServiceIDLength), nil)
	}
	result := engine.Evaluate(sid, s.reference.Snapshot(), s.tickets.List(), s.now())
	s.logger.Debug("rule chain evaluated",
		zap.String("service_id", string(sid)),
		zap.String("rule", result.Rule),
		zap.Bool("allowed", result.Verdict.Allowed))
	return result, nil
}

// requestFields walks the submission schema in declaration order so the
// first missing field is reported deterministically.
func requestFields(req domain.TicketRequest) []struct{ name, value string } {
	return []struct{ name, value string }{
		{"service id", string(req.ServiceID)},
		{"requester email", req.RequesterEmail},
		{"customer name", req.CustomerName},
		{"address", req.Address},
		{"mobile number", req.MobileNumber},
		{"issue reported", req.IssueReported},
		{"connection type", string(req.ConnectionType)},
		{"priority", string(req.Priority)},
	}
}

// CreateTicket validates the request, re-runs the rule chain at submit time
// and, when allowed, appends a ticket and resolves routing: failed-intact
// provisioning goes to the CSC queue, everything else raises a field work
// order. Exactly one notification is dispatched per created ticket.
func (s *TicketService) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.Ticket, domain.Verdict, error) {
	req.ServiceID = domain.CanonicalServiceID(string(req.ServiceID))

	for _, field := range requestFields(req) {
		if field.value == "" {
			return nil, domain.Verdict{}, apperrors.NewValidationError(
				fmt.Sprintf("The %s field is missing. Please complete all fields before submitting.", field.name),
				map[string]any{"field": field.name})
		}
	}

	// The verdict shown at evaluation time may be stale by submit time
	// (planned windows open, tickets get logged), so the full chain runs
	// again here rather than trusting the caller.
	result, err := s.Evaluate(string(req.ServiceID))
	if err != nil {
		return nil, domain.Verdict{}, err
	}
	verdict := result.Verdict
	if !verdict.Allowed {
		return nil, verdict, apperrors.NewSubmissionBlocked(verdict.Message, map[string]any{
			"severity":           string(verdict.Severity),
			"copyable_reference": verdict.CopyableReference,
			"rule":               result.Rule,
		})
	}

	ticket := domain.Ticket{
		TicketRequest: req,
		Status:        domain.TicketStatusOpen,
		CreatedAt:     s.now(),
	}

	// Routing is re-resolved against provisioning at creation time.
	snapshot := s.reference.Snapshot()
	today := s.now().Format("2006-01-02")
	failedIntact := false
	if rec, ok := snapshot.ProvisioningFor(req.ServiceID); ok && rec.IsFailedIntact(today) {
		ticket.Status = domain.TicketStatusCSCAssigned
		failedIntact = true
	} else {
		ticket.Status = domain.TicketStatusFieldWOCreated
		ticket.WONumber = s.workOrderNum()
	}

	s.tickets.Create(&ticket)

	if failedIntact {
		s.notifications.SendFailedIntact(ctx, ticket)
	} else {
		s.notifications.SendWorkOrder(ctx, ticket)
	}

	s.logger.Info("ticket created",
		zap.Int("ticket_id", ticket.ID),
		zap.String("service_id", string(ticket.ServiceID)),
		zap.String("status", string(ticket.Status)))
	s.publish(ctx, events.Event{
		Type:    events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{Ticket: ticket},
	})
	return &ticket, verdict, nil
}

// UpdateStatus transitions a ticket. It is total over ids: an unknown id is
// a silent no-op reported through the applied flag, never an error.
func (s *TicketService) UpdateStatus(ctx context.Context, id int, status domain.TicketStatus) (bool, error) {
	current, found := s.tickets.GetByID(id)
	if !found {
		s.logger.Debug("status update ignored for unknown ticket", zap.Int("ticket_id", id))
		return false, nil
	}
	if !s.transition(current.Status, status) {
		return false, apperrors.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("transition %s -> %s is not allowed", current.Status, status),
			http.StatusConflict, nil)
	}
	s.tickets.UpdateStatus(id, status)
	if current.Status != status {
		s.publish(ctx, events.Event{
			Type: events.EventTicketStatusChanged,
			Payload: events.TicketStatusChangedPayload{
				TicketID:  id,
				OldStatus: current.Status,
				NewStatus: status,
			},
		})
	}
	return true, nil
}

// Get fetches a session ticket by id.
func (s *TicketService) Get(id int) (domain.Ticket, bool) {
	return s.tickets.GetByID(id)
}

// List returns the session ticket log.
func (s *TicketService) List() []domain.Ticket {
	return s.tickets.List()
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
