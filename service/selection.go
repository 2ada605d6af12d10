package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"guildkeeper/models"
)

// codeAlphabet excludes visually ambiguous characters (I, L, O, 0, 1)
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codeGroupSize  = 4
	codeGroupCount = 3

	// maxCodeAttempts bounds the uniqueness retry loop; with a 31-character
	// alphabet and 12 positions a collision streak this long means the
	// store lookup itself is broken
	maxCodeAttempts = 50
)

// randomCode produces one candidate code, grouped for readability
func randomCode() string {
	groups := make([]string, codeGroupCount)
	var b strings.Builder
	for g := 0; g < codeGroupCount; g++ {
		b.Reset()
		for i := 0; i < codeGroupSize; i++ {
			b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
		}
		groups[g] = b.String()
	}
	return strings.Join(groups, "-")
}

// GenerateUniqueCode produces a code not yet present in the store. The store,
// not an in-memory set, is the source of truth for uniqueness since
// generation may run on multiple process instances.
func GenerateUniqueCode(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := randomCode()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique code after %d attempts", maxCodeAttempts)
}

// DrawPrize selects one prize with probability proportional to its weight.
// Non-positive weights count as 1. Returns false when no prizes are configured.
func DrawPrize(prizes []*models.Prize) (*models.Prize, bool) {
	if len(prizes) == 0 {
		return nil, false
	}

	total := 0
	for _, p := range prizes {
		total += p.DrawWeight()
	}

	roll := rand.Intn(total)
	for _, p := range prizes {
		roll -= p.DrawWeight()
		if roll < 0 {
			return p, true
		}
	}

	// Unreachable given the weights sum to total
	return prizes[len(prizes)-1], true
}

// SampleWinners picks the requested number of winners from the pool without
// replacement. An empty pool yields an empty result. When the pool has no
// more unique participants than requested, every unique participant wins,
// in order of first appearance.
func SampleWinners(pool []int64, count int) []int64 {
	if len(pool) == 0 {
		return []int64{}
	}
	if count < 1 {
		count = 1
	}

	seen := make(map[int64]struct{}, len(pool))
	unique := make([]int64, 0, len(pool))
	for _, id := range pool {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) <= count {
		return unique
	}

	winners := make([]int64, 0, count)
	for _, idx := range rand.Perm(len(unique))[:count] {
		winners = append(winners, unique[idx])
	}
	return winners
}
