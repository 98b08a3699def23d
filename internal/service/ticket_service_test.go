package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/repository"
	apperrors "github.com/spec-kit/noc-intake/pkg/util"
)

var testTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testMailboxes() config.MailboxConfig {
	return config.MailboxConfig{
		NOC:        "noc@test.com",
		CSC:        "csc@fibrenetworks.co.nz",
		FieldForce: "field_force@test.com",
	}
}

func newIntakeFixture(t *testing.T, snapshot domain.ReferenceSnapshot) (*TicketService, repository.TicketRepository, repository.EmailRepository) {
	t.Helper()
	ticketRepo := repository.NewTicketRepository()
	emailRepo := repository.NewEmailRepository()
	notifications := NewNotificationService(emailRepo, nil, zap.NewNop(), testMailboxes())
	svc := NewTicketService(TicketDependencies{
		TicketRepo:    ticketRepo,
		ReferenceRepo: repository.NewReferenceRepositoryWithData(snapshot),
		Notifications: notifications,
		Logger:        zap.NewNop(),
	})
	svc.now = func() time.Time { return testTime }
	svc.workOrderNum = func() string { return "WO-482911" }
	return svc, ticketRepo, emailRepo
}

func validRequest(sid string) domain.TicketRequest {
	return domain.TicketRequest{
		ServiceID:      domain.ServiceID(sid),
		RequesterEmail: "support@rsp.example",
		CustomerName:   "Jordan Blake",
		Address:        "12 Harbour View Rd",
		MobileNumber:   "0211234567",
		IssueReported:  "No internet light on the ONT",
		ConnectionType: domain.ConnectionTypeBusiness,
		Priority:       domain.TicketPriorityNormal,
	}
}

func TestCreateTicketRaisesFieldWorkOrder(t *testing.T) {
	svc, _, emails := newIntakeFixture(t, domain.ReferenceSnapshot{})

	ticket, verdict, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
	require.NoError(t, err)
	require.True(t, verdict.Allowed)

	assert.Equal(t, domain.FirstTicketID, ticket.ID)
	assert.Equal(t, domain.TicketStatusFieldWOCreated, ticket.Status)
	assert.Equal(t, "WO-482911", ticket.WONumber)

	dispatched := emails.List()
	require.Len(t, dispatched, 1)
	assert.Equal(t, "field_force@test.com", dispatched[0].To)
	assert.Equal(t, "NEW WORK ORDER: TT-1700001", dispatched[0].Subject)
	assert.Contains(t, dispatched[0].Body, "Is Business Connection?: Yes")
	assert.Contains(t, dispatched[0].Body, "Service ID: ENXYZB02123460")
}

func TestCreateTicketFailedIntactRouting(t *testing.T) {
	t.Run("future rfs date routes to CSC", func(t *testing.T) {
		svc, _, emails := newIntakeFixture(t, domain.ReferenceSnapshot{
			Provisioning: []domain.ProvisioningRecord{
				{ServiceID: "ENXYZB02123460", RFSDate: "2025-06-15", RequestType: domain.ProvisioningRequestNew, Status: domain.ProvisioningStatusClosed},
			},
		})

		ticket, _, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
		require.NoError(t, err)

		assert.Equal(t, domain.TicketStatusCSCAssigned, ticket.Status)
		assert.Empty(t, ticket.WONumber)

		dispatched := emails.List()
		require.Len(t, dispatched, 1)
		assert.Equal(t, "csc@fibrenetworks.co.nz", dispatched[0].To)
		assert.Equal(t, "FAILED INTACT", dispatched[0].Subject)
	})

	t.Run("past rfs date raises a work order instead", func(t *testing.T) {
		svc, _, _ := newIntakeFixture(t, domain.ReferenceSnapshot{
			Provisioning: []domain.ProvisioningRecord{
				{ServiceID: "ENXYZB02123460", RFSDate: "2025-06-01", RequestType: domain.ProvisioningRequestNew, Status: domain.ProvisioningStatusClosed},
			},
		})

		ticket, _, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
		require.NoError(t, err)

		assert.Equal(t, domain.TicketStatusFieldWOCreated, ticket.Status)
		assert.Equal(t, "WO-482911", ticket.WONumber)
	})
}

func TestCreateTicketSequentialIDs(t *testing.T) {
	svc, _, _ := newIntakeFixture(t, domain.ReferenceSnapshot{})

	sids := []string{"ENXYZB02100001", "ENXYZB02100002", "ENXYZB02100003"}
	for i, sid := range sids {
		ticket, _, err := svc.CreateTicket(context.Background(), validRequest(sid))
		require.NoError(t, err)
		assert.Equal(t, domain.FirstTicketID+i, ticket.ID)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc, tickets, emails := newIntakeFixture(t, domain.ReferenceSnapshot{})

	req := validRequest("ENXYZB02123460")
	req.CustomerName = ""
	req.Address = ""

	_, _, err := svc.CreateTicket(context.Background(), req)
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "The customer name field is missing. Please complete all fields before submitting.", domainErr.Message)
	assert.Empty(t, tickets.List())
	assert.Empty(t, emails.List())
}

func TestCreateTicketBlockedBySubmitTimeReevaluation(t *testing.T) {
	svc, tickets, emails := newIntakeFixture(t, domain.ReferenceSnapshot{
		OnHold: []domain.OnHoldEntry{{TicketNumber: "1600001", ServiceID: "ENXYZB02123456"}},
	})

	_, verdict, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123456"))
	require.Error(t, err)
	assert.False(t, verdict.Allowed)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "SUBMISSION_BLOCKED", domainErr.Code)
	assert.Equal(t, "1600001", domainErr.Details["copyable_reference"])
	assert.Empty(t, tickets.List())
	assert.Empty(t, emails.List())
}

func TestCreateTicketBlocksDuplicateSubmission(t *testing.T) {
	svc, tickets, _ := newIntakeFixture(t, domain.ReferenceSnapshot{})

	_, _, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
	require.NoError(t, err)

	_, _, err = svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
	require.Error(t, err)
	assert.Equal(t, "SUBMISSION_BLOCKED", apperrors.ToDomainError(err).Code)
	assert.Len(t, tickets.List(), 1)
}

func TestEvaluateRejectsPartialID(t *testing.T) {
	svc, _, _ := newIntakeFixture(t, domain.ReferenceSnapshot{})

	_, err := svc.Evaluate("ENXYZ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestEvaluateCanonicalizesInput(t *testing.T) {
	svc, _, _ := newIntakeFixture(t, domain.ReferenceSnapshot{
		OnHold: []domain.OnHoldEntry{{TicketNumber: "1600001", ServiceID: "ENXYZB02123456"}},
	})

	result, err := svc.Evaluate("  enxyzb02123456  ")
	require.NoError(t, err)
	assert.False(t, result.Verdict.Allowed)
	assert.Equal(t, "1600001", result.Verdict.CopyableReference)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		svc, _, _ := newIntakeFixture(t, domain.ReferenceSnapshot{})

		applied, err := svc.UpdateStatus(context.Background(), 9999999, domain.TicketStatusResolved)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("known id transitions", func(t *testing.T) {
		svc, tickets, _ := newIntakeFixture(t, domain.ReferenceSnapshot{})
		ticket, _, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
		require.NoError(t, err)

		applied, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusResolved)
		require.NoError(t, err)
		assert.True(t, applied)

		stored, found := tickets.GetByID(ticket.ID)
		require.True(t, found)
		assert.Equal(t, domain.TicketStatusResolved, stored.Status)
	})
}

func TestStrictTransitionPolicy(t *testing.T) {
	ticketRepo := repository.NewTicketRepository()
	emailRepo := repository.NewEmailRepository()
	notifications := NewNotificationService(emailRepo, nil, zap.NewNop(), testMailboxes())
	svc := NewTicketService(TicketDependencies{
		TicketRepo:    ticketRepo,
		ReferenceRepo: repository.NewReferenceRepositoryWithData(domain.ReferenceSnapshot{}),
		Notifications: notifications,
		Logger:        zap.NewNop(),
		Transition:    StrictTransitionPolicy,
	})
	svc.now = func() time.Time { return testTime }

	ticket, _, err := svc.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
	require.NoError(t, err)

	applied, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusFieldWOCreated)
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)
}
