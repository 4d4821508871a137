package vault

import (
	"math/rand"

	"vanguard-backend/internal/domain"
)

// DiscoveryPool is the set of games eligible for the discovery queue:
// unplayed and not blacklisted. Blacklisted ids never appear here even
// though they stay in the raw library.
func DiscoveryPool(games []domain.Game, blacklist map[int64]struct{}) []domain.Game {
	var out []domain.Game
	for _, g := range games {
		if _, banned := blacklist[g.AppID]; banned {
			continue
		}
		if g.TotalPlaytime == 0 {
			out = append(out, g)
		}
	}
	return out
}

// RandomPick samples up to n distinct non-blacklisted games.
func RandomPick(games []domain.Game, blacklist map[int64]struct{}, n int) []domain.Game {
	var pool []domain.Game
	for _, g := range games {
		if _, banned := blacklist[g.AppID]; !banned {
			pool = append(pool, g)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}
