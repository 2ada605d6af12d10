package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	cooldown := 24 * time.Hour

	t.Run("get or create starts empty", func(t *testing.T) {
		wallet, err := repo.GetOrCreate(ctx, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), wallet.Balance)
		assert.Nil(t, wallet.LastDaily)
		assert.Nil(t, wallet.LastWork)

		// Second call returns the same wallet rather than resetting it
		require.NoError(t, repo.Credit(ctx, 100, 1, 50))
		wallet, err = repo.GetOrCreate(ctx, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(50), wallet.Balance)
	})

	t.Run("debit refuses to overdraw", func(t *testing.T) {
		require.NoError(t, repo.Credit(ctx, 100, 2, 100))

		ok, err := repo.Debit(ctx, 100, 2, 60)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Debit(ctx, 100, 2, 60)
		require.NoError(t, err)
		assert.False(t, ok)

		wallet, err := repo.GetOrCreate(ctx, 100, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(40), wallet.Balance)
	})

	t.Run("debit of an absent wallet fails", func(t *testing.T) {
		ok, err := repo.Debit(ctx, 100, 999, 10)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("claim daily enforces the cooldown", func(t *testing.T) {
		now := time.Now()
		claimed, err := repo.ClaimDaily(ctx, 100, 3, 150, now.Add(-cooldown), now)
		require.NoError(t, err)
		assert.True(t, claimed)

		// Immediate second claim is still on cooldown
		later := now.Add(time.Minute)
		claimed, err = repo.ClaimDaily(ctx, 100, 3, 150, later.Add(-cooldown), later)
		require.NoError(t, err)
		assert.False(t, claimed)

		wallet, err := repo.GetOrCreate(ctx, 100, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(150), wallet.Balance)
		require.NotNil(t, wallet.LastDaily)

		// A claim after the cooldown pays out again
		afterCooldown := now.Add(cooldown + time.Minute)
		claimed, err = repo.ClaimDaily(ctx, 100, 3, 150, afterCooldown.Add(-cooldown), afterCooldown)
		require.NoError(t, err)
		assert.True(t, claimed)

		wallet, err = repo.GetOrCreate(ctx, 100, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(300), wallet.Balance)
	})

	t.Run("daily and work cooldowns are independent", func(t *testing.T) {
		now := time.Now()
		claimed, err := repo.ClaimDaily(ctx, 100, 4, 150, now.Add(-cooldown), now)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = repo.ClaimWork(ctx, 100, 4, 60, now.Add(-30*time.Minute), now)
		require.NoError(t, err)
		assert.True(t, claimed)

		wallet, err := repo.GetOrCreate(ctx, 100, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(210), wallet.Balance)
		assert.NotNil(t, wallet.LastDaily)
		assert.NotNil(t, wallet.LastWork)
	})

	t.Run("top orders by balance", func(t *testing.T) {
		guildID := int64(200)
		require.NoError(t, repo.Credit(ctx, guildID, 10, 300))
		require.NoError(t, repo.Credit(ctx, guildID, 11, 500))
		require.NoError(t, repo.Credit(ctx, guildID, 12, 100))

		top, err := repo.Top(ctx, guildID, 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, int64(11), top[0].UserID)
		assert.Equal(t, int64(10), top[1].UserID)
	})
}
