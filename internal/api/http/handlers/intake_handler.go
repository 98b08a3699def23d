package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/noc-intake/internal/api/dto"
	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/engine"
	"github.com/spec-kit/noc-intake/internal/observability"
	"github.com/spec-kit/noc-intake/internal/service"
	apperrors "github.com/spec-kit/noc-intake/pkg/util"
)

// IntakeHandler exposes the diagnostic rule chain and ticket submission.
type IntakeHandler struct {
	service *service.TicketService
	metrics *observability.Metrics
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(ticketService *service.TicketService, metrics *observability.Metrics) *IntakeHandler {
	return &IntakeHandler{service: ticketService, metrics: metrics}
}

// Evaluate POST /intake/evaluate.
func (h *IntakeHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Evaluate(req.ServiceID)
	if err != nil {
		return err
	}
	h.recordVerdict(result)
	return c.JSON(fiber.Map{"data": verdictResponse(result)})
}

// CreateTicket POST /intake/tickets.
func (h *IntakeHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, verdict, err := h.service.CreateTicket(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"ticket": ticketResponse(ticket),
		"verdict": dto.VerdictResponse{
			Allowed:  verdict.Allowed,
			Severity: string(verdict.Severity),
			Message:  verdict.Message,
		},
	}})
}

func (h *IntakeHandler) recordVerdict(result engine.Result) {
	if h.metrics == nil {
		return
	}
	if result.Verdict.Allowed {
		h.metrics.RecordVerdict("allowed")
	} else {
		h.metrics.RecordVerdict(result.Rule)
	}
}

func verdictResponse(result engine.Result) dto.VerdictResponse {
	return dto.VerdictResponse{
		Allowed:           result.Verdict.Allowed,
		Severity:          string(result.Verdict.Severity),
		Message:           result.Verdict.Message,
		CopyableReference: result.Verdict.CopyableReference,
		Rule:              result.Rule,
	}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		ServiceID:      string(ticket.ServiceID),
		RequesterEmail: ticket.RequesterEmail,
		CustomerName:   ticket.CustomerName,
		Address:        ticket.Address,
		MobileNumber:   ticket.MobileNumber,
		IssueReported:  ticket.IssueReported,
		ConnectionType: ticket.ConnectionType,
		Priority:       ticket.Priority,
		Status:         ticket.Status,
		WONumber:       ticket.WONumber,
		CreatedAt:      ticket.CreatedAt.Format("02 Jan 2006 15:04"),
	}
}
