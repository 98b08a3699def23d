package repository

import (
	"fmt"
	"sync"

	"github.com/spec-kit/noc-intake/internal/domain"
)

// Table names the five reference lookup tables accepted by bulk ingestion.
type Table string

const (
	TableOnHold           Table = "on-hold"
	TableUnplannedOutages Table = "unplanned-outages"
	TablePlannedOutages   Table = "planned-outages"
	TableIBSS             Table = "ibss"
	TableAltiplano        Table = "altiplano"
)

// Tables lists every valid table name.
func Tables() []Table {
	return []Table{TableOnHold, TableUnplannedOutages, TablePlannedOutages, TableIBSS, TableAltiplano}
}

// ReferenceRepository holds the diagnostic lookup tables. Tables are
// replaced wholesale by bulk loads; a snapshot taken under the lock never
// observes a partial overwrite.
type ReferenceRepository interface {
	BulkLoad(table Table, records any) error
	Snapshot() domain.ReferenceSnapshot
	Reset()
}

type referenceRepository struct {
	mu           sync.RWMutex
	onHold       []domain.OnHoldEntry
	unplanned    []domain.UnplannedOutage
	planned      []domain.PlannedOutage
	provisioning []domain.ProvisioningRecord
	diagnostics  []domain.LineDiagnostic
}

// NewReferenceRepository instantiates an empty store.
func NewReferenceRepository() ReferenceRepository {
	return &referenceRepository{}
}

// NewReferenceRepositoryWithData seeds the store, used by fixtures and the
// application root when a starter dataset is configured.
func NewReferenceRepositoryWithData(snapshot domain.ReferenceSnapshot) ReferenceRepository {
	return &referenceRepository{
		onHold:       snapshot.OnHold,
		unplanned:    snapshot.Unplanned,
		planned:      snapshot.Planned,
		provisioning: snapshot.Provisioning,
		diagnostics:  snapshot.Diagnostics,
	}
}

func (r *referenceRepository) BulkLoad(table Table, records any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch table {
	case TableOnHold:
		rows, ok := records.([]domain.OnHoldEntry)
		if !ok {
			return typeMismatch(table)
		}
		r.onHold = rows
	case TableUnplannedOutages:
		rows, ok := records.([]domain.UnplannedOutage)
		if !ok {
			return typeMismatch(table)
		}
		r.unplanned = rows
	case TablePlannedOutages:
		rows, ok := records.([]domain.PlannedOutage)
		if !ok {
			return typeMismatch(table)
		}
		for _, row := range rows {
			if !row.StartTime.Before(row.EndTime) {
				return fmt.Errorf("planned outage %s: start time must precede end time", row.Ref)
			}
		}
		r.planned = rows
	case TableIBSS:
		rows, ok := records.([]domain.ProvisioningRecord)
		if !ok {
			return typeMismatch(table)
		}
		r.provisioning = rows
	case TableAltiplano:
		rows, ok := records.([]domain.LineDiagnostic)
		if !ok {
			return typeMismatch(table)
		}
		r.diagnostics = rows
	default:
		return fmt.Errorf("unknown reference table %q", table)
	}
	return nil
}

func (r *referenceRepository) Snapshot() domain.ReferenceSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.ReferenceSnapshot{
		OnHold:       append([]domain.OnHoldEntry(nil), r.onHold...),
		Unplanned:    append([]domain.UnplannedOutage(nil), r.unplanned...),
		Planned:      append([]domain.PlannedOutage(nil), r.planned...),
		Provisioning: append([]domain.ProvisioningRecord(nil), r.provisioning...),
		Diagnostics:  append([]domain.LineDiagnostic(nil), r.diagnostics...),
	}
}

func (r *referenceRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onHold = nil
	r.unplanned = nil
	r.planned = nil
	r.provisioning = nil
	r.diagnostics = nil
}

func typeMismatch(table Table) error {
	return fmt.Errorf("record type does not match table %q", table)
}
