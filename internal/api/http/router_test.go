package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/api/http/handlers"
	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/ingest"
	"github.com/spec-kit/noc-intake/internal/observability"
	"github.com/spec-kit/noc-intake/internal/persistence"
	"github.com/spec-kit/noc-intake/internal/repository"
	"github.com/spec-kit/noc-intake/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	mailboxes := config.MailboxConfig{
		NOC:        "noc@test.com",
		CSC:        "csc@fibrenetworks.co.nz",
		FieldForce: "field_force@test.com",
	}

	dispatcher := events.NewInMemoryDispatcher()
	ticketRepo := repository.NewTicketRepository()
	emailRepo := repository.NewEmailRepository()
	referenceRepo := repository.NewReferenceRepository()

	notifications := service.NewNotificationService(emailRepo, dispatcher, logger, mailboxes)
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		ReferenceRepo: referenceRepo,
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	signOffs := service.NewSignOffService(tickets, notifications, logger)
	advisory := service.NewAdvisoryService(config.AdvisoryConfig{FallbackMessage: "offline"}, ticketRepo, emailRepo, referenceRepo, nil, logger)
	loader := ingest.NewLoader(referenceRepo, dispatcher, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("noc-intake-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Intake:  handlers.NewIntakeHandler(tickets, nil),
		Tickets: handlers.NewTicketsHandler(tickets),
		Inbox:   handlers.NewInboxHandler(emailRepo, signOffs, mailboxes),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Loader:        loader,
			Advisory:      advisory,
			TicketRepo:    ticketRepo,
			EmailRepo:     emailRepo,
			ReferenceRepo: referenceRepo,
			Dispatcher:    dispatcher,
			Logger:        logger,
		}),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest(t, app, req)
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp.StatusCode, parsed
}

func ticketPayload(sid string) map[string]any {
	return map[string]any{
		"service_id":      sid,
		"requester_email": "support@rsp.example",
		"customer_name":   "Jordan Blake",
		"address":         "12 Harbour View Rd",
		"mobile_number":   "0211234567",
		"issue_reported":  "No internet light on the ONT",
		"connection_type": "Business",
		"priority":        "Normal",
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/health/live", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = doJSON(t, app, "GET", "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestIntakeFlow(t *testing.T) {
	app := newTestApp(t)

	// Clean reference data: evaluation falls through to the line test.
	status, body := doJSON(t, app, "POST", "/intake/evaluate", map[string]any{"service_id": "ENXYZB02123460"})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["allowed"])
	assert.Equal(t, "line_test", data["rule"])

	status, body = doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusCreated, status)
	ticket := body["data"].(map[string]any)["ticket"].(map[string]any)
	assert.Equal(t, float64(1700001), ticket["id"])
	assert.Equal(t, "Field WO Created", ticket["status"])

	// The open ticket now blocks a repeat submission.
	status, body = doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusConflict, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "SUBMISSION_BLOCKED", errBody["code"])
}

func TestIntakeValidationErrorEnvelope(t *testing.T) {
	app := newTestApp(t)

	payload := ticketPayload("ENXYZB02123460")
	payload["customer_name"] = ""

	status, body := doJSON(t, app, "POST", "/intake/tickets", payload)
	require.Equal(t, http.StatusBadRequest, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	assert.Contains(t, errBody["message"], "customer name")
}

func TestTicketStatusEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, "PATCH", "/tickets/1700001/status", map[string]any{"status": "Resolved"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["applied"])

	status, body = doJSON(t, app, "PATCH", "/tickets/9999999/status", map[string]any{"status": "Resolved"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["data"].(map[string]any)["applied"])
}

func TestDatasetUploadDrivesEvaluation(t *testing.T) {
	app := newTestApp(t)

	csv := "ticket_number,service_id\n1600001,ENXYZB02123456\n"
	req := httptest.NewRequest("POST", "/admin/datasets/on-hold", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	status, body := doRequest(t, app, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["records"])

	status, body = doJSON(t, app, "POST", "/intake/evaluate", map[string]any{"service_id": "ENXYZB02123456"})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["allowed"])
	assert.Equal(t, "1600001", data["copyable_reference"])

	status, _ = doJSON(t, app, "POST", "/admin/datasets/nonsense", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInboxAndSignOffEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, "POST", "/inbox/signoff/1700001", map[string]any{
		"trouble_found": "Cut drop fibre",
		"cause":         "Third party contractor",
		"action_taken":  "Respliced drop cable",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["submitted"])

	status, body = doJSON(t, app, "GET", "/inbox?mailbox=noc", nil)
	require.Equal(t, http.StatusOK, status)
	inbox := body["data"].([]any)
	require.NotEmpty(t, inbox)
	report := inbox[len(inbox)-1].(map[string]any)
	assert.Equal(t, "TT-1700001", report["subject"])

	status, body = doRequest(t, app, httptest.NewRequest("POST", "/inbox/accept/"+report["id"].(string), nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["accepted"])

	status, body = doJSON(t, app, "GET", "/tickets/1700001", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Resolved", body["data"].(map[string]any)["status"])
}

func TestAdminResetClearsState(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, "POST", "/admin/reset", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["reset"])

	status, body = doJSON(t, app, "GET", "/tickets/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	// The counter restarts from the seed after a reset.
	status, body = doJSON(t, app, "POST", "/intake/tickets", ticketPayload("ENXYZB02123460"))
	require.Equal(t, http.StatusCreated, status)
	ticket := body["data"].(map[string]any)["ticket"].(map[string]any)
	assert.Equal(t, float64(1700001), ticket["id"])
}

func TestAdvisoryFallbackWithoutEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/admin/chat", map[string]any{"prompt": "any outages?"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "offline", body["data"].(map[string]any)["reply"])

	status, body = doJSON(t, app, "GET", "/admin/reports", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}
