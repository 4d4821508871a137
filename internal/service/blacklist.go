package service

import (
	"context"
	"sort"
	"sync"

	"vanguard-backend/internal/store"

	"github.com/rs/zerolog"
)

const blacklistKey = "blacklist"

// BlacklistService owns the persisted blacklist. Blacklisted games stay
// in the library; they are only excluded from discovery pools and
// suppressed in vault views.
type BlacklistService struct {
	store  store.Store
	logger zerolog.Logger

	// Serializes the read-modify-write of the persisted array; the KV
	// substrate itself is last-write-wins per key.
	mu sync.Mutex
}

func NewBlacklistService(st store.Store, logger zerolog.Logger) *BlacklistService {
	return &BlacklistService{store: st, logger: logger}
}

// Load returns the blacklist as a set. A corrupt blob is an empty set.
func (s *BlacklistService) Load(ctx context.Context) map[int64]struct{} {
	ids, _ := store.GetJSON[[]int64](ctx, s.store, s.logger, blacklistKey)
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// List returns the blacklist as a sorted slice.
func (s *BlacklistService) List(ctx context.Context) []int64 {
	set := s.Load(ctx)
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Toggle flips one game's blacklist membership and reports the new state.
func (s *BlacklistService) Toggle(ctx context.Context, appID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.Load(ctx)
	_, blacklisted := set[appID]
	if blacklisted {
		delete(set, appID)
	} else {
		set[appID] = struct{}{}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := store.SetJSON(ctx, s.store, blacklistKey, ids); err != nil {
		return blacklisted, err
	}

	s.logger.Info().Int64("app_id", appID).Bool("blacklisted", !blacklisted).Msg("blacklist toggled")
	return !blacklisted, nil
}
