package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/noc-intake/internal/domain"
	"github.com/spec-kit/noc-intake/internal/repository"
)

func newSignOffFixture(t *testing.T) (*SignOffService, *TicketService, *domain.Ticket, repository.EmailRepository) {
	t.Helper()
	tickets, _, emails := newIntakeFixture(t, domain.ReferenceSnapshot{})
	signOffs := NewSignOffService(tickets, tickets.notifications, zap.NewNop())

	ticket, _, err := tickets.CreateTicket(context.Background(), validRequest("ENXYZB02123460"))
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusFieldWOCreated, ticket.Status)

	return signOffs, tickets, ticket, emails
}

func TestSubmitFieldSignOff(t *testing.T) {
	t.Run("dispatches the restoration report", func(t *testing.T) {
		signOffs, _, ticket, emails := newSignOffFixture(t)

		submitted := signOffs.SubmitFieldSignOff(context.Background(), ticket.ID, domain.SignOff{
			DateRestored: "10 Jun 2025 14:30",
			TroubleFound: "Cut drop fibre",
			Cause:        "Third party contractor",
			ActionTaken:  "Respliced drop cable",
		})
		require.True(t, submitted)

		dispatched := emails.List()
		require.Len(t, dispatched, 2)
		report := dispatched[1]
		assert.Equal(t, "field_force@test.com", report.From)
		assert.Equal(t, "noc@test.com", report.To)
		assert.Equal(t, "TT-1700001", report.Subject)
		assert.Contains(t, report.Body, "Trouble Found: Cut drop fibre")
		assert.Contains(t, report.Body, "Cause What/Who: Third party contractor")
		assert.Contains(t, report.Body, "Action Taken: Respliced drop cable")
	})

	t.Run("rejected unless awaiting field work", func(t *testing.T) {
		signOffs, tickets, ticket, _ := newSignOffFixture(t)

		_, err := tickets.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusOnHold)
		require.NoError(t, err)

		assert.False(t, signOffs.SubmitFieldSignOff(context.Background(), ticket.ID, domain.SignOff{}))
		assert.False(t, signOffs.SubmitFieldSignOff(context.Background(), 9999999, domain.SignOff{}))
	})
}

func TestAcceptSignOff(t *testing.T) {
	t.Run("resolves the ticket and notifies both sides", func(t *testing.T) {
		signOffs, tickets, ticket, emails := newSignOffFixture(t)

		require.True(t, signOffs.SubmitFieldSignOff(context.Background(), ticket.ID, domain.SignOff{
			TroubleFound: "Cut drop fibre",
			Cause:        "Third party contractor",
			ActionTaken:  "Respliced drop cable",
		}))
		report := emails.List()[1]

		accepted := signOffs.AcceptSignOff(context.Background(), report)
		require.True(t, accepted)

		dispatched := emails.List()
		require.Len(t, dispatched, 4)

		ack := dispatched[2]
		assert.Equal(t, "field_force@test.com", ack.To)
		assert.Equal(t, "Re: TT-1700001", ack.Subject)

		resolution := dispatched[3]
		assert.Equal(t, "support@rsp.example", resolution.To)
		assert.Equal(t, "RESOLVED: Ticket ID 1700001 - ENXYZB02123460", resolution.Subject)
		assert.Contains(t, resolution.Body, "Issue Found: Cut drop fibre")
		assert.Contains(t, resolution.Body, "Fault Cause Description: Third party contractor")
		assert.Contains(t, resolution.Body, "Action Taken: Respliced drop cable")

		stored, found := tickets.Get(ticket.ID)
		require.True(t, found)
		assert.Equal(t, domain.TicketStatusResolved, stored.Status)
	})

	t.Run("missing labels default to N/A", func(t *testing.T) {
		signOffs, _, ticket, emails := newSignOffFixture(t)

		accepted := signOffs.AcceptSignOff(context.Background(), domain.Email{
			Subject: "FW: TT-" + "1700001",
			Body:    "Job done, all good.",
		})
		require.True(t, accepted)
		_ = ticket

		resolution := emails.List()[2]
		assert.Contains(t, resolution.Body, "Issue Found: N/A")
		assert.Contains(t, resolution.Body, "Fault Cause Description: N/A")
		assert.Contains(t, resolution.Body, "Action Taken: N/A")
	})

	t.Run("ignores messages without a ticket reference", func(t *testing.T) {
		signOffs, _, _, emails := newSignOffFixture(t)

		assert.False(t, signOffs.AcceptSignOff(context.Background(), domain.Email{Subject: "Weekly summary"}))
		assert.False(t, signOffs.AcceptSignOff(context.Background(), domain.Email{Subject: "TT-9999999 restored"}))
		assert.Len(t, emails.List(), 1)
	})
}
