package handlers

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/api/dto"
	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/ingest"
	"github.com/spec-kit/noc-intake/internal/repository"
	"github.com/spec-kit/noc-intake/internal/service"
	apperrors "github.com/spec-kit/noc-intake/pkg/util"
)

// AdminHandler exposes dataset ingestion, the advisory console and the
// session reset.
type AdminHandler struct {
	loader     *ingest.Loader
	advisory   *service.AdvisoryService
	tickets    repository.TicketRepository
	emails     repository.EmailRepository
	reference  repository.ReferenceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AdminDependencies bundles collaborators for the admin handler.
type AdminDependencies struct {
	Loader        *ingest.Loader
	Advisory      *service.AdvisoryService
	TicketRepo    repository.TicketRepository
	EmailRepo     repository.EmailRepository
	ReferenceRepo repository.ReferenceRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		loader:     deps.Loader,
		advisory:   deps.Advisory,
		tickets:    deps.TicketRepo,
		emails:     deps.EmailRepo,
		reference:  deps.ReferenceRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// LoadDataset POST /admin/datasets/:kind replaces one reference table from a
// CSV request body.
func (h *AdminHandler) LoadDataset(c *fiber.Ctx) error {
	kind := repository.Table(c.Params("kind"))
	valid := false
	for _, t := range repository.Tables() {
		if t == kind {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.NewValidationError("unknown dataset kind", map[string]any{"kind": string(kind)})
	}
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return apperrors.NewValidationError("empty dataset body", nil)
	}

	count, err := h.loader.Load(c.UserContext(), kind, bytes.NewReader(c.Body()))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"kind": string(kind)})
	}
	return c.JSON(fiber.Map{"data": dto.DatasetLoadResponse{Table: string(kind), Records: count}})
}

// Reset POST /admin/reset clears the session ticket log, the message log,
// the reference tables and the report vault in one shot.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	h.tickets.Reset()
	h.emails.Reset()
	h.reference.Reset()
	h.advisory.Reset()
	h.logger.Info("session state reset")
	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(c.UserContext(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSystemReset,
			Timestamp: time.Now(),
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// Chat POST /admin/chat forwards a prompt to the advisory collaborator.
func (h *AdminHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return apperrors.NewValidationError("prompt required", nil)
	}
	reply := h.advisory.Ask(c.UserContext(), req.Prompt)
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Reply: reply}})
}

// Reports GET /admin/reports lists generated analysis artifacts, newest
// first.
func (h *AdminHandler) Reports(c *fiber.Ctx) error {
	reports := h.advisory.Reports()
	items := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, dto.ReportResponse{
			ID:        r.ID,
			Type:      r.Type,
			Title:     r.Title,
			Content:   r.Content,
			Timestamp: r.Timestamp,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
