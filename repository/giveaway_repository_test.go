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

func TestGiveawayRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGiveawayRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create starts running", func(t *testing.T) {
		giveaway := testutil.CreateTestGiveaway(100, 9001, "Nitro")
		err := repo.Create(ctx, giveaway)
		require.NoError(t, err)
		assert.NotZero(t, giveaway.ID)
		assert.Equal(t, models.GiveawayStatusRunning, giveaway.Status)

		fetched, err := repo.GetByID(ctx, giveaway.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "Nitro", fetched.Prize)
		assert.Nil(t, fetched.MessageID)
	})

	t.Run("add entry is unique per participant", func(t *testing.T) {
		giveaway := testutil.CreateTestGiveaway(100, 9002, "Game key")
		require.NoError(t, repo.Create(ctx, giveaway))

		now := time.Now()
		added, err := repo.AddEntry(ctx, giveaway.ID, 500, now)
		require.NoError(t, err)
		assert.True(t, added)

		// Second entry from the same participant is ignored
		added, err = repo.AddEntry(ctx, giveaway.ID, 500, now.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, added)

		added, err = repo.AddEntry(ctx, giveaway.ID, 501, now.Add(2*time.Second))
		require.NoError(t, err)
		assert.True(t, added)

		count, err := repo.CountEntries(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		entries, err := repo.GetEntries(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{500, 501}, entries)
	})

	t.Run("mark ended succeeds exactly once", func(t *testing.T) {
		giveaway := testutil.CreateTestGiveaway(100, 9003, "Sticker pack")
		require.NoError(t, repo.Create(ctx, giveaway))

		ended, err := repo.MarkEnded(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.True(t, ended)

		// Second ender loses the race
		ended, err = repo.MarkEnded(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.False(t, ended)

		fetched, err := repo.GetByID(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GiveawayStatusEnded, fetched.Status)
	})

	t.Run("cancel only applies to running giveaways", func(t *testing.T) {
		giveaway := testutil.CreateTestGiveaway(100, 9004, "Badge")
		require.NoError(t, repo.Create(ctx, giveaway))

		cancelled, err := repo.MarkCancelled(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.True(t, cancelled)

		cancelled, err = repo.MarkCancelled(ctx, giveaway.ID)
		require.NoError(t, err)
		assert.False(t, cancelled)
	})

	t.Run("list due only returns running past-deadline giveaways", func(t *testing.T) {
		guildID := int64(200)
		due := testutil.CreateTestDueGiveaway(guildID, 9005, "Due prize")
		require.NoError(t, repo.Create(ctx, due))

		future := testutil.CreateTestGiveaway(guildID, 9006, "Future prize")
		require.NoError(t, repo.Create(ctx, future))

		endedDue := testutil.CreateTestDueGiveaway(guildID, 9007, "Already handled")
		require.NoError(t, repo.Create(ctx, endedDue))
		ended, err := repo.MarkEnded(ctx, endedDue.ID)
		require.NoError(t, err)
		require.True(t, ended)

		dueList, err := repo.ListDue(ctx, time.Now())
		require.NoError(t, err)
		ids := make([]int64, 0, len(dueList))
		for _, g := range dueList {
			ids = append(ids, g.ID)
		}
		assert.Contains(t, ids, due.ID)
		assert.NotContains(t, ids, future.ID)
		assert.NotContains(t, ids, endedDue.ID)
	})

	t.Run("list running scoped to guild", func(t *testing.T) {
		guildID := int64(300)
		running := testutil.CreateTestGiveaway(guildID, 9008, "Guild prize")
		require.NoError(t, repo.Create(ctx, running))

		other := testutil.CreateTestGiveaway(301, 9009, "Other guild prize")
		require.NoError(t, repo.Create(ctx, other))

		list, err := repo.ListRunning(ctx, guildID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, running.ID, list[0].ID)
	})

	t.Run("set message id", func(t *testing.T) {
		giveaway := testutil.CreateTestGiveaway(100, 9010, "Announced prize")
		require.NoError(t, repo.Create(ctx, giveaway))

		require.NoError(t, repo.SetMessageID(ctx, giveaway.ID, 424242))

		fetched, err := repo.GetByID(ctx, giveaway.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.MessageID)
		assert.Equal(t, int64(424242), *fetched.MessageID)
	})
}
