package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/models"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create opens ticket with fresh activity", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9001)
		err := repo.Create(ctx, ticket)
		require.NoError(t, err)
		assert.NotZero(t, ticket.ID)
		assert.Equal(t, models.TicketStatusOpen, ticket.Status)
		assert.False(t, ticket.LastActivityAt.IsZero())

		fetched, err := repo.GetByChannel(ctx, 9001)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, ticket.ID, fetched.ID)
		assert.False(t, fetched.Warned30)
		assert.False(t, fetched.Warned10)
	})

	t.Run("duplicate channel binding is rejected", func(t *testing.T) {
		first := testutil.CreateTestTicket(100, 500, 9002)
		require.NoError(t, repo.Create(ctx, first))

		second := testutil.CreateTestTicket(100, 501, 9002)
		err := repo.Create(ctx, second)
		assert.Error(t, err)
	})

	t.Run("close succeeds exactly once", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9003)
		require.NoError(t, repo.Create(ctx, ticket))

		now := time.Now()
		closed, err := repo.Close(ctx, 9003, 777, "resolved", now)
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, models.TicketStatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedBy)
		assert.Equal(t, int64(777), *closed.ClosedBy)
		require.NotNil(t, closed.CloseReason)
		assert.Equal(t, "resolved", *closed.CloseReason)

		// Second closer loses the race
		closed, err = repo.Close(ctx, 9003, 778, "again", now)
		require.NoError(t, err)
		assert.Nil(t, closed)
	})

	t.Run("reopen restores open state and clears warnings", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9004)
		require.NoError(t, repo.Create(ctx, ticket))
		require.NoError(t, repo.SetWarningFlags(ctx, ticket.ID, true, true))

		_, err := repo.Close(ctx, 9004, 777, "done", time.Now())
		require.NoError(t, err)

		reopened, err := repo.Reopen(ctx, ticket.ID, time.Now())
		require.NoError(t, err)
		assert.True(t, reopened)

		fetched, err := repo.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, models.TicketStatusOpen, fetched.Status)
		assert.Nil(t, fetched.ClosedAt)
		assert.Nil(t, fetched.CloseReason)
		assert.Nil(t, fetched.ClosedBy)
		assert.False(t, fetched.Warned30)
		assert.False(t, fetched.Warned10)

		// Reopening an already open ticket is a no-op
		reopened, err = repo.Reopen(ctx, ticket.ID, time.Now())
		require.NoError(t, err)
		assert.False(t, reopened)
	})

	t.Run("touch activity keeps warning flags sticky", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9005)
		require.NoError(t, repo.Create(ctx, ticket))
		require.NoError(t, repo.SetWarningFlags(ctx, ticket.ID, true, false))

		now := time.Now().Add(time.Minute)
		touched, err := repo.TouchActivity(ctx, 9005, now)
		require.NoError(t, err)
		assert.True(t, touched)

		// Activity moves the deadline but must not re-arm a fired warning
		fetched, err := repo.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, now, fetched.LastActivityAt, time.Second)
		assert.True(t, fetched.Warned30)
		assert.False(t, fetched.Warned10)
	})

	t.Run("touch activity ignores closed tickets", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9006)
		require.NoError(t, repo.Create(ctx, ticket))
		_, err := repo.Close(ctx, 9006, 777, "done", time.Now())
		require.NoError(t, err)

		touched, err := repo.TouchActivity(ctx, 9006, time.Now())
		require.NoError(t, err)
		assert.False(t, touched)
	})

	t.Run("purchase details round trip", func(t *testing.T) {
		ticket := testutil.CreateTestPurchaseTicket(100, 500, 9007)
		require.NoError(t, repo.Create(ctx, ticket))

		require.NoError(t, repo.SetPurchaseDetails(ctx, ticket.ID, "premium", "paypal"))

		fetched, err := repo.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.PurchasePlan)
		assert.Equal(t, "premium", *fetched.PurchasePlan)
		require.NotNil(t, fetched.PaymentMethod)
		assert.Equal(t, "paypal", *fetched.PaymentMethod)
	})

	t.Run("message log keeps chronological order", func(t *testing.T) {
		ticket := testutil.CreateTestTicket(100, 500, 9008)
		require.NoError(t, repo.Create(ctx, ticket))

		first := testutil.CreateTestTicketMessage(ticket.ID, 500, "hello")
		require.NoError(t, repo.AddMessage(ctx, first))

		second := testutil.CreateTestTicketMessage(ticket.ID, 777, "how can I help?")
		second.Attachments = []string{"https://cdn.example.com/screenshot.png"}
		require.NoError(t, repo.AddMessage(ctx, second))

		messages, err := repo.GetMessages(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "hello", messages[0].Content)
		assert.Equal(t, "how can I help?", messages[1].Content)
		assert.Equal(t, []string{"https://cdn.example.com/screenshot.png"}, messages[1].Attachments)
	})

	t.Run("panels round trip", func(t *testing.T) {
		panel := &models.TicketPanel{GuildID: 300, ChannelID: 9100, MessageID: 42}
		require.NoError(t, repo.CreatePanel(ctx, panel))
		assert.NotZero(t, panel.ID)

		panels, err := repo.ListPanels(ctx, 300)
		require.NoError(t, err)
		require.Len(t, panels, 1)
		assert.Equal(t, int64(42), panels[0].MessageID)
	})
}
