// Package ingest parses bulk dataset uploads into typed reference records.
// Every upload names its table kind explicitly; record shapes are never
// sniffed from field names.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/repository"
)

// Column contracts per table. The header row is required and must match
// exactly; multi-valued cells (service ids, MAC addresses) are
// semicolon-separated; timestamps are RFC 3339; dates are YYYY-MM-DD.
var expectedHeaders = map[repository.Table][]string{
	repository.TableOnHold:           {"ticket_number", "service_id"},
	repository.TableUnplannedOutages: {"service_id", "outage_ref"},
	repository.TablePlannedOutages:   {"ref", "co_name", "olt_name", "lt_card", "pon_port", "cabinet_id", "service_ids", "start_time", "end_time"},
	repository.TableIBSS:             {"service_id", "rfs_date", "request_type", "status"},
	repository.TableAltiplano:        {"service_id", "ont_serial", "mac_addresses", "rx_power", "svlan", "cvlan", "port", "status", "optical_range"},
}

// Parse reads CSV rows for the named table and returns the typed record
// slice ready for ReferenceRepository.BulkLoad, along with the record count.
func Parse(table repository.Table, r io.Reader) (any, int, error) {
	expected, ok := expectedHeaders[table]
	if !ok {
		return nil, 0, fmt.Errorf("unknown dataset kind %q", table)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, expected); err != nil {
		return nil, 0, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read rows: %w", err)
	}

	switch table {
	case repository.TableOnHold:
		records := make([]domain.OnHoldEntry, 0, len(rows))
		for _, row := range rows {
			records = append(records, domain.OnHoldEntry{
				TicketNumber: row[0],
				ServiceID:    domain.CanonicalServiceID(row[1]),
			})
		}
		return records, len(records), nil

	case repository.TableUnplannedOutages:
		records := make([]domain.UnplannedOutage, 0, len(rows))
		for _, row := range rows {
			records = append(records, domain.UnplannedOutage{
				ServiceID: domain.CanonicalServiceID(row[0]),
				OutageRef: row[1],
			})
		}
		return records, len(records), nil

	case repository.TablePlannedOutages:
		records := make([]domain.PlannedOutage, 0, len(rows))
		for i, row := range rows {
			start, err := time.Parse(time.RFC3339, row[7])
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: invalid start_time: %w", i+1, err)
			}
			end, err := time.Parse(time.RFC3339, row[8])
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: invalid end_time: %w", i+1, err)
			}
			if !start.Before(end) {
				return nil, 0, fmt.Errorf("row %d: start_time must precede end_time", i+1)
			}
			records = append(records, domain.PlannedOutage{
				Ref:        row[0],
				COName:     row[1],
				OLTName:    row[2],
				LTCard:     row[3],
				PONPort:    row[4],
				CabinetID:  row[5],
				ServiceIDs: splitServiceIDs(row[6]),
				StartTime:  start,
				EndTime:    end,
			})
		}
		return records, len(records), nil

	case repository.TableIBSS:
		records := make([]domain.ProvisioningRecord, 0, len(rows))
		for i, row := range rows {
			if _, err := time.Parse("2006-01-02", row[1]); err != nil {
				return nil, 0, fmt.Errorf("row %d: invalid rfs_date: %w", i+1, err)
			}
			records = append(records, domain.ProvisioningRecord{
				ServiceID:   domain.CanonicalServiceID(row[0]),
				RFSDate:     row[1],
				RequestType: domain.ProvisioningRequestType(row[2]),
				Status:      domain.ProvisioningStatus(row[3]),
			})
		}
		return records, len(records), nil

	case repository.TableAltiplano:
		records := make([]domain.LineDiagnostic, 0, len(rows))
		for _, row := range rows {
			records = append(records, domain.LineDiagnostic{
				ServiceID:    domain.CanonicalServiceID(row[0]),
				ONTSerial:    row[1],
				MACAddresses: splitList(row[2]),
				RxPower:      row[3],
				SVLAN:        row[4],
				CVLAN:        row[5],
				Port:         row[6],
				Status:       domain.LineStatus(row[7]),
				OpticalRange: row[8],
			})
		}
		return records, len(records), nil
	}
	return nil, 0, fmt.Errorf("unknown dataset kind %q", table)
}

func checkHeader(got, expected []string) error {
	if len(got) != len(expected) {
		return fmt.Errorf("expected columns %v, got %v", expected, got)
	}
	for i := range expected {
		if strings.TrimSpace(strings.ToLower(got[i])) != expected[i] {
			return fmt.Errorf("expected columns %v, got %v", expected, got)
		}
	}
	return nil
}

func splitServiceIDs(cell string) []domain.ServiceID {
	parts := splitList(cell)
	out := make([]domain.ServiceID, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.CanonicalServiceID(p))
	}
	return out
}

func splitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
