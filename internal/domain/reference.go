package domain

import "time"

// OnHoldEntry is a previously opened, still-unresolved ticket for a service,
// bulk-loaded from an external system. Immutable once loaded.
type OnHoldEntry struct {
	TicketNumber string
	ServiceID    ServiceID
}

// UnplannedOutage is an active unscheduled network fault. Presence alone
// blocks submission; there is no time window.
type UnplannedOutage struct {
	ServiceID ServiceID
	OutageRef string
}

// PlannedOutage is a scheduled maintenance window over a set of services.
// StartTime < EndTime is an ingestion invariant.
type PlannedOutage struct {
	Ref        string
	COName     string
	OLTName    string
	LTCard     string
	PONPort    string
	CabinetID  string
	ServiceIDs []ServiceID
	StartTime  time.Time
	EndTime    time.Time
}

// Covers reports whether the outage lists the given service.
func (p PlannedOutage) Covers(sid ServiceID) bool {
	for _, id := range p.ServiceIDs {
		if id == sid {
			return true
		}
	}
	return false
}

// ActiveAt reports whether the maintenance window contains the instant.
func (p PlannedOutage) ActiveAt(t time.Time) bool {
	return !t.Before(p.StartTime) && !t.After(p.EndTime)
}

// ProvisioningRequestType enumerates IBSS request kinds.
type ProvisioningRequestType string

const (
	ProvisioningRequestNew       ProvisioningRequestType = "New Connection"
	ProvisioningRequestTerminate ProvisioningRequestType = "Terminate"
	ProvisioningRequestModify    ProvisioningRequestType = "Modify"
)

// ProvisioningStatus enumerates IBSS record states.
type ProvisioningStatus string

const (
	ProvisioningStatusClosed   ProvisioningStatus = "Closed"
	ProvisioningStatusApproved ProvisioningStatus = "Approved"
	ProvisioningStatusOpen     ProvisioningStatus = "Open"
	ProvisioningStatusPending  ProvisioningStatus = "Pending"
)

// ProvisioningRecord is an IBSS connect/disconnect/modify record. RFSDate is
// a date-only YYYY-MM-DD string; date ordering is lexicographic.
type ProvisioningRecord struct {
	ServiceID   ServiceID
	RFSDate     string
	RequestType ProvisioningRequestType
	Status      ProvisioningStatus
}

// IsTerminated reports a completed or approved termination.
func (r ProvisioningRecord) IsTerminated() bool {
	return r.RequestType == ProvisioningRequestTerminate &&
		(r.Status == ProvisioningStatusClosed || r.Status == ProvisioningStatusApproved)
}

// IsFailedIntact reports a new connection that never went live: the request
// closed with a ready-for-service date still in the future.
func (r ProvisioningRecord) IsFailedIntact(today string) bool {
	return r.RequestType == ProvisioningRequestNew &&
		r.Status == ProvisioningStatusClosed &&
		r.RFSDate >= today
}

// LineStatus enumerates Altiplano line-test outcomes.
type LineStatus string

const (
	LineStatusGood LineStatus = "good"
	LineStatusBad  LineStatus = "bad"
)

// LineDiagnostic is a point-in-time optical/line-health reading. Status is
// carried in the data: bad when RxPower < -28 dBm or no MAC addresses were
// learned. Absence of a record is a distinct case from presence.
type LineDiagnostic struct {
	ServiceID    ServiceID
	ONTSerial    string
	MACAddresses []string
	RxPower      string
	SVLAN        string
	CVLAN        string
	Port         string
	Status       LineStatus
	OpticalRange string
}

// ReferenceSnapshot is a consistent view of the five lookup tables handed to
// the rule engine. Bulk reloads replace whole tables, so a snapshot never
// observes a partial overwrite.
type ReferenceSnapshot struct {
	OnHold       []OnHoldEntry
	Unplanned    []UnplannedOutage
	Planned      []PlannedOutage
	Provisioning []ProvisioningRecord
	Diagnostics  []LineDiagnostic
}

// ProvisioningFor returns the first IBSS record for the service, if any.
func (s ReferenceSnapshot) ProvisioningFor(sid ServiceID) (ProvisioningRecord, bool) {
	for _, rec := range s.Provisioning {
		if rec.ServiceID == sid {
			return rec, true
		}
	}
	return ProvisioningRecord{}, false
}

// DiagnosticFor returns the line diagnostic for the service, if any.
func (s ReferenceSnapshot) DiagnosticFor(sid ServiceID) (LineDiagnostic, bool) {
	for _, d := range s.Diagnostics {
		if d.ServiceID == sid {
			return d, true
		}
	}
	return LineDiagnostic{}, false
}
