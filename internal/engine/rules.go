// Package engine implements the ticket intake decision chain: the ordered
// set of lookups against on-hold tickets, outages, provisioning records and
// line diagnostics that decides whether a fault submission is accepted.
package engine

import (
	"fmt"
	"time"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// Rule names identify which check produced a verdict, for metrics and logs.
const (
	RuleOnHold        = "on_hold_ticket"
	RuleSessionTicket = "session_ticket"
	RuleUnplanned     = "unplanned_outage"
	RulePlanned       = "planned_outage"
	RuleTerminated    = "terminated_service"
	RuleLineTest      = "line_test"
)

// Result pairs a verdict with the rule that decided it.
type Result struct {
	Verdict domain.Verdict
	Rule    string
}

// Evaluate runs the ordered short-circuit chain for a canonical service
// identifier against a consistent reference snapshot and the session ticket
// log. The first matching rule wins; the order is a correctness requirement.
// The final line-test rule always terminates the chain with an allowed
// verdict, so every canonical identifier yields exactly one verdict.
func Evaluate(sid domain.ServiceID, ref domain.ReferenceSnapshot, sessionTickets []domain.Ticket, now time.Time) Result {
	// 1. Existing on-hold ticket from the bulk-loaded backlog.
	for _, entry := range ref.OnHold {
		if entry.ServiceID == sid {
			return Result{
				Rule: RuleOnHold,
				Verdict: domain.Blocked(domain.SeverityWarning,
					fmt.Sprintf("There is already an active ticket logged (ID# %s) for this service ID. Please follow up on the existing request rather than opening a new one.", entry.TicketNumber),
					entry.TicketNumber),
			}
		}
	}

	// 2. Existing open session ticket, preventing double submission.
	for _, t := range sessionTickets {
		if t.ServiceID == sid && t.Status != domain.TicketStatusResolved {
			return Result{
				Rule: RuleSessionTicket,
				Verdict: domain.Blocked(domain.SeverityWarning,
					fmt.Sprintf("A ticket is already open for this service ID (Ticket ID: %d). Kindly refer to the existing ticket for updates.", t.ID),
					fmt.Sprintf("%d", t.ID)),
			}
		}
	}

	// 3. Active unscheduled outage. No time window; presence blocks.
	for _, o := range ref.Unplanned {
		if o.ServiceID == sid {
			return Result{
				Rule: RuleUnplanned,
				Verdict: domain.Blocked(domain.SeverityError,
					fmt.Sprintf("This service is part of the ongoing network outage (%s). Please check the outage notification received for this service ID.", o.OutageRef),
					""),
			}
		}
	}

	// 4. Planned maintenance. Blocks only while now is inside the window;
	// a listed service outside its window falls through.
	for _, p := range ref.Planned {
		if p.Covers(sid) && p.ActiveAt(now) {
			return Result{
				Rule: RulePlanned,
				Verdict: domain.Blocked(domain.SeverityInfo,
					fmt.Sprintf("This service ID is part of a planned maintenance window (between %s and %s). Please refer to the maintenance notice.",
						p.StartTime.Format(time.RFC3339), p.EndTime.Format(time.RFC3339)),
					""),
			}
		}
	}

	// 5. Terminated or approved-terminate provisioning record.
	if rec, ok := ref.ProvisioningFor(sid); ok && rec.IsTerminated() {
		return Result{
			Rule: RuleTerminated,
			Verdict: domain.Blocked(domain.SeverityError,
				"This is a terminated service. Please enter an active service ID to continue.",
				""),
		}
	}

	// 6. Real-time line diagnostic. Always terminal.
	diag, ok := ref.DiagnosticFor(sid)
	if !ok {
		return Result{
			Rule: RuleLineTest,
			Verdict: domain.Allow(domain.SeverityWarning,
				"Diagnostics unavailable. Manual NOC assessment required. You may proceed to submit the ticket."),
		}
	}
	if diag.Status == domain.LineStatusGood {
		return Result{
			Rule: RuleLineTest,
			Verdict: domain.Allow(domain.SeveritySuccess,
				fmt.Sprintf("Line test indicates the service is active from Fibre Networks' side. (SVID: %s, CVID: %s). Please verify customer configuration and Port %s connectivity.",
					diag.SVLAN, diag.CVLAN, diag.Port)),
		}
	}
	return Result{
		Rule: RuleLineTest,
		Verdict: domain.Allow(domain.SeverityWarning,
			"Potential Layer-1 or Layer-2 fault detected. Real-time diagnostics confirm service interruption. Please proceed with the submission."),
	}
}
