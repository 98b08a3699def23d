package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/noc-intake/internal/api/dto"
	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/repository"
	"github.com/spec-kit/noc-intake/internal/service"
	apperrors "github.com/spec-kit/noc-intake/pkg/util"
)

// InboxHandler exposes the dispatched message log and the sign-off workflow.
type InboxHandler struct {
	emails   repository.EmailRepository
	signOffs *service.SignOffService
	mailbox  config.MailboxConfig
}

// NewInboxHandler constructs handler.
func NewInboxHandler(emails repository.EmailRepository, signOffs *service.SignOffService, mailbox config.MailboxConfig) *InboxHandler {
	return &InboxHandler{emails: emails, signOffs: signOffs, mailbox: mailbox}
}

// ListEmails GET /inbox. An optional mailbox query filters to one inbox view.
func (h *InboxHandler) ListEmails(c *fiber.Ctx) error {
	var emails []domain.Email
	if box := c.Query("mailbox"); box != "" {
		switch repository.Mailbox(box) {
		case repository.MailboxNOC, repository.MailboxCSC, repository.MailboxFieldForce, repository.MailboxRSP:
		default:
			return apperrors.NewValidationError("unknown mailbox", map[string]any{"mailbox": box})
		}
		internal := []string{h.mailbox.NOC, h.mailbox.CSC, h.mailbox.FieldForce}
		emails = h.emails.ListForMailbox(repository.Mailbox(box), internal)
	} else {
		emails = h.emails.List()
	}

	items := make([]dto.EmailResponse, 0, len(emails))
	for _, e := range emails {
		items = append(items, emailResponse(e))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SubmitSignOff POST /inbox/signoff/:id dispatches the field-force
// restoration report for a ticket awaiting field work.
func (h *InboxHandler) SubmitSignOff(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("ticket id must be numeric", nil)
	}
	var req dto.FieldSignOffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	submitted := h.signOffs.SubmitFieldSignOff(c.UserContext(), id, domain.SignOff{
		DateRestored: req.DateRestored,
		TroubleFound: req.TroubleFound,
		Cause:        req.Cause,
		ActionTaken:  req.ActionTaken,
	})
	if !submitted {
		return apperrors.NewNotFound("ticket awaiting field work", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"submitted": true}})
}

// AcceptSignOff POST /inbox/accept/:emailId accepts a received sign-off
// message: the ticket resolves and both acknowledgements go out.
func (h *InboxHandler) AcceptSignOff(c *fiber.Ctx) error {
	email, found := h.emails.GetByID(c.Params("emailId"))
	if !found {
		return apperrors.NewNotFound("email", map[string]any{"id": c.Params("emailId")})
	}
	accepted := h.signOffs.AcceptSignOff(c.UserContext(), email)
	return c.JSON(fiber.Map{"data": fiber.Map{"accepted": accepted}})
}

func emailResponse(e domain.Email) dto.EmailResponse {
	return dto.EmailResponse{
		ID:        e.ID,
		From:      e.From,
		To:        e.To,
		Subject:   e.Subject,
		Body:      e.Body,
		Timestamp: e.Timestamp,
	}
}
