package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueCode(t *testing.T) {
	ctx := context.Background()

	t.Run("format", func(t *testing.T) {
		code, err := GenerateUniqueCode(ctx, func(ctx context.Context, code string) (bool, error) {
			return false, nil
		})
		require.NoError(t, err)

		groups := strings.Split(code, "-")
		require.Len(t, groups, 3)
		for _, group := range groups {
			assert.Len(t, group, 4)
			for _, c := range group {
				assert.Contains(t, codeAlphabet, string(c))
			}
		}
	})

	t.Run("excludes ambiguous characters", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateUniqueCode(ctx, func(ctx context.Context, code string) (bool, error) {
				return false, nil
			})
			require.NoError(t, err)
			assert.NotContains(t, code, "I")
			assert.NotContains(t, code, "L")
			assert.NotContains(t, code, "O")
			assert.NotContains(t, code, "0")
			assert.NotContains(t, code, "1")
		}
	})

	t.Run("retries until store reports free", func(t *testing.T) {
		calls := 0
		code, err := GenerateUniqueCode(ctx, func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls < 4, nil
		})
		require.NoError(t, err)
		assert.NotEmpty(t, code)
		assert.Equal(t, 4, calls)
	})

	t.Run("gives up when store always collides", func(t *testing.T) {
		_, err := GenerateUniqueCode(ctx, func(ctx context.Context, code string) (bool, error) {
			return true, nil
		})
		assert.Error(t, err)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		_, err := GenerateUniqueCode(ctx, func(ctx context.Context, code string) (bool, error) {
			return false, fmt.Errorf("store down")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store down")
	})
}

func TestDrawPrize(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		prize, ok := DrawPrize(nil)
		assert.False(t, ok)
		assert.Nil(t, prize)
	})

	t.Run("single prize", func(t *testing.T) {
		prizes := []*models.Prize{{ID: 1, Name: "gold", Weight: 5}}
		prize, ok := DrawPrize(prizes)
		require.True(t, ok)
		assert.Equal(t, "gold", prize.Name)
	})

	t.Run("zero weight draws with floor probability", func(t *testing.T) {
		prizes := []*models.Prize{
			{ID: 1, Name: "common", Weight: 1},
			{ID: 2, Name: "broken", Weight: 0},
			{ID: 3, Name: "negative", Weight: -7},
		}

		counts := make(map[string]int)
		for i := 0; i < 3000; i++ {
			prize, ok := DrawPrize(prizes)
			require.True(t, ok)
			counts[prize.Name]++
		}

		// All three share weight 1 after clamping, so each should land
		// around a third of the draws
		for name, n := range counts {
			assert.Greater(t, n, 700, "prize %s drawn too rarely", name)
		}
	})

	t.Run("heavier prizes drawn more often", func(t *testing.T) {
		prizes := []*models.Prize{
			{ID: 1, Name: "common", Weight: 9},
			{ID: 2, Name: "rare", Weight: 1},
		}

		counts := make(map[string]int)
		for i := 0; i < 5000; i++ {
			prize, ok := DrawPrize(prizes)
			require.True(t, ok)
			counts[prize.Name]++
		}

		assert.Greater(t, counts["common"], counts["rare"]*3)
	})
}

func TestSampleWinners(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		winners := SampleWinners(nil, 3)
		assert.Empty(t, winners)
		assert.NotNil(t, winners)
	})

	t.Run("pool smaller than count collapses duplicates in first-seen order", func(t *testing.T) {
		pool := []int64{10, 20, 10, 30}
		winners := SampleWinners(pool, 5)
		assert.Equal(t, []int64{10, 20, 30}, winners)
	})

	t.Run("pool equal to count", func(t *testing.T) {
		pool := []int64{1, 2, 3}
		winners := SampleWinners(pool, 3)
		assert.Equal(t, []int64{1, 2, 3}, winners)
	})

	t.Run("samples without replacement from larger pool", func(t *testing.T) {
		pool := make([]int64, 10)
		for i := range pool {
			pool[i] = int64(i + 1)
		}

		winners := SampleWinners(pool, 3)
		require.Len(t, winners, 3)

		seen := make(map[int64]bool)
		for _, w := range winners {
			assert.False(t, seen[w], "winner %d drawn twice", w)
			seen[w] = true
			assert.GreaterOrEqual(t, w, int64(1))
			assert.LessOrEqual(t, w, int64(10))
		}
	})

	t.Run("count below one is clamped", func(t *testing.T) {
		pool := []int64{1, 2, 3, 4}
		winners := SampleWinners(pool, 0)
		assert.Len(t, winners, 1)
	})

	t.Run("every participant can win", func(t *testing.T) {
		pool := []int64{1, 2, 3, 4, 5}
		won := make(map[int64]bool)
		for i := 0; i < 500; i++ {
			for _, w := range SampleWinners(pool, 2) {
				won[w] = true
			}
		}
		assert.Len(t, won, 5)
	})
}
