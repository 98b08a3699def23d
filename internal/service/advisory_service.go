package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/persistence"
	"github.com/spec-kit/noc-intake/internal/repository"
)

// reportPattern locates a trailing report object embedded in the advisory
// reply. It is extracted and stripped before the text is surfaced.
var reportPattern = regexp.MustCompile(`(?s)\{.*"report".*\}`)

// Report is a generated analysis artifact (CSV export or post-incident
// review) extracted from an advisory reply.
type Report struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// AdvisoryService fronts the external analysis collaborator: it grounds
// every prompt in a JSON snapshot of the current system state and treats
// the collaborator as best-effort and fallible. A failed or timed-out call
// degrades to a fixed fallback message and never surfaces an error; nothing
// in the intake workflow waits on it.
type AdvisoryService struct {
	cfg       config.AdvisoryConfig
	tickets   repository.TicketRepository
	emails    repository.EmailRepository
	reference repository.ReferenceRepository
	cache     *persistence.Redis
	logger    *zap.Logger
	client    *http.Client

	mu      sync.Mutex
	reports []Report
}

// NewAdvisoryService constructs the service.
func NewAdvisoryService(cfg config.AdvisoryConfig, tickets repository.TicketRepository, emails repository.EmailRepository, reference repository.ReferenceRepository, cache *persistence.Redis, logger *zap.Logger) *AdvisoryService {
	return &AdvisoryService{
		cfg:       cfg,
		tickets:   tickets,
		emails:    emails,
		reference: reference,
		cache:     cache,
		logger:    logger,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// advisoryRequest is the wire payload sent to the collaborator.
type advisoryRequest struct {
	Prompt  string          `json:"prompt"`
	Context json.RawMessage `json:"context"`
}

// snapshotContext mirrors the grounding snapshot contract: the collaborator
// answers only from this data.
type snapshotContext struct {
	Timestamp     string `json:"timestamp"`
	ActiveTickets []struct {
		ID       int    `json:"id"`
		SID      string `json:"sid"`
		Customer string `json:"customer"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
		Address  string `json:"address"`
	} `json:"activeTickets"`
	NetworkDiagnostics []struct {
		SID          string `json:"sid"`
		Power        string `json:"power"`
		Status       string `json:"status"`
		OpticalRange string `json:"opticalRange"`
		VLANs        string `json:"vlans"`
	} `json:"networkDiagnostics"`
	ProvisioningRecords []struct {
		SID    string `json:"sid"`
		Type   string `json:"type"`
		Status string `json:"status"`
		Date   string `json:"date"`
	} `json:"provisioningRecords"`
	Outages struct {
		Unplanned []struct {
			SID string `json:"sid"`
			Ref string `json:"ref"`
		} `json:"unplanned"`
		Planned []struct {
			Ref   string   `json:"ref"`
			SIDs  []string `json:"sids"`
			Start string   `json:"start"`
			End   string   `json:"end"`
		} `json:"planned"`
	} `json:"outages"`
	Emails []struct {
		From    string `json:"from"`
		Subject string `json:"subject"`
		Time    string `json:"time"`
	} `json:"emails"`
	OnHold []struct {
		TicketNumber string `json:"ticketNumber"`
		ServiceID    string `json:"serviceId"`
	} `json:"onHold"`
}

// Ask sends the prompt plus the grounding snapshot to the collaborator and
// returns the reply text with any embedded report extracted and stored.
// Errors never propagate: the configured fallback message is returned
// instead.
func (a *AdvisoryService) Ask(ctx context.Context, prompt string) string {
	snapshot, err := json.Marshal(a.buildContext())
	if err != nil {
		return a.cfg.FallbackMessage
	}

	cacheKey := a.cacheKey(prompt, snapshot)
	if cached, ok := a.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	text, err := a.call(ctx, advisoryRequest{Prompt: prompt, Context: snapshot})
	if err != nil {
		a.logger.Warn("advisory collaborator unavailable", zap.Error(err))
		return a.cfg.FallbackMessage
	}

	text = a.extractReport(text)
	a.cacheSet(ctx, cacheKey, text)
	return text
}

// Reports returns the generated report vault, newest first.
func (a *AdvisoryService) Reports() []Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Report(nil), a.reports...)
}

// Reset clears the report vault.
func (a *AdvisoryService) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = nil
}

func (a *AdvisoryService) call(ctx context.Context, payload advisoryRequest) (string, error) {
	if a.cfg.Endpoint == "" {
		return "", errors.New("no advisory endpoint configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.New("advisory endpoint returned " + resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// extractReport pulls a trailing {"report": ...} object out of the reply,
// stores it in the vault and strips it from the displayed text. A reply
// whose embedded JSON does not parse is surfaced unchanged.
func (a *AdvisoryService) extractReport(text string) string {
	match := reportPattern.FindString(text)
	if match == "" {
		return text
	}
	var parsed struct {
		Report struct {
			Type    string `json:"type"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return text
	}
	a.mu.Lock()
	a.reports = append([]Report{{
		ID:        uuid.NewString(),
		Type:      parsed.Report.Type,
		Title:     parsed.Report.Title,
		Content:   parsed.Report.Content,
		Timestamp: time.Now().Format("02 Jan 2006 15:04"),
	}}, a.reports...)
	a.mu.Unlock()
	return strings.TrimSpace(strings.Replace(text, match, "", 1))
}

func (a *AdvisoryService) buildContext() snapshotContext {
	var sc snapshotContext
	sc.Timestamp = time.Now().Format("02 Jan 2006 15:04")

	for _, t := range a.tickets.List() {
		sc.ActiveTickets = append(sc.ActiveTickets, struct {
			ID       int    `json:"id"`
			SID      string `json:"sid"`
			Customer string `json:"customer"`
			Status   string `json:"status"`
			Priority string `json:"priority"`
			Address  string `json:"address"`
		}{t.ID, string(t.ServiceID), t.CustomerName, string(t.Status), string(t.Priority), t.Address})
	}

	ref := a.reference.Snapshot()
	for _, d := range ref.Diagnostics {
		sc.NetworkDiagnostics = append(sc.NetworkDiagnostics, struct {
			SID          string `json:"sid"`
			Power        string `json:"power"`
			Status       string `json:"status"`
			OpticalRange string `json:"opticalRange"`
			VLANs        string `json:"vlans"`
		}{string(d.ServiceID), d.RxPower, string(d.Status), d.OpticalRange, d.SVLAN + "/" + d.CVLAN})
	}
	for _, p := range ref.Provisioning {
		sc.ProvisioningRecords = append(sc.ProvisioningRecords, struct {
			SID    string `json:"sid"`
			Type   string `json:"type"`
			Status string `json:"status"`
			Date   string `json:"date"`
		}{string(p.ServiceID), string(p.RequestType), string(p.Status), p.RFSDate})
	}
	for _, u := range ref.Unplanned {
		sc.Outages.Unplanned = append(sc.Outages.Unplanned, struct {
			SID string `json:"sid"`
			Ref string `json:"ref"`
		}{string(u.ServiceID), u.OutageRef})
	}
	for _, p := range ref.Planned {
		sids := make([]string, 0, len(p.ServiceIDs))
		for _, sid := range p.ServiceIDs {
			sids = append(sids, string(sid))
		}
		sc.Outages.Planned = append(sc.Outages.Planned, struct {
			Ref   string   `json:"ref"`
			SIDs  []string `json:"sids"`
			Start string   `json:"start"`
			End   string   `json:"end"`
		}{p.Ref, sids, p.StartTime.Format(time.RFC3339), p.EndTime.Format(time.RFC3339)})
	}
	for _, e := range a.emails.List() {
		sc.Emails = append(sc.Emails, struct {
			From    string `json:"from"`
			Subject string `json:"subject"`
			Time    string `json:"time"`
		}{e.From, e.Subject, e.Timestamp})
	}
	for _, h := range ref.OnHold {
		sc.OnHold = append(sc.OnHold, struct {
			TicketNumber string `json:"ticketNumber"`
			ServiceID    string `json:"serviceId"`
		}{h.TicketNumber, string(h.ServiceID)})
	}
	return sc
}

func (a *AdvisoryService) cacheKey(prompt string, snapshot []byte) string {
	sum := sha256.Sum256(append([]byte(prompt+"|"), snapshot...))
	return "advisory:" + hex.EncodeToString(sum[:])
}

func (a *AdvisoryService) cacheGet(ctx context.Context, key string) (string, bool) {
	if a.cache == nil || a.cache.Client == nil || a.cfg.CacheTTL() <= 0 {
		return "", false
	}
	val, err := a.cache.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (a *AdvisoryService) cacheSet(ctx context.Context, key, text string) {
	if a.cache == nil || a.cache.Client == nil || a.cfg.CacheTTL() <= 0 {
		return
	}
	if err := a.cache.Client.Set(ctx, key, text, a.cfg.CacheTTL()).Err(); err != nil {
		a.logger.Debug("advisory cache write failed", zap.Error(err))
	}
}
