package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"
)

// MasteryService classifies the most-played games as mastered (100%
// achievements) or hunter targets (>= 50%, < 100%). The mastered set is
// session state: it only ever grows between passes. The hunter set is
// recomputed fresh on every pass.
type MasteryService struct {
	resolver Resolver
	logger   zerolog.Logger

	mu       sync.Mutex
	mastered map[int64]struct{}
	hunter   map[int64]struct{}
}

func NewMasteryService(resolver Resolver, logger zerolog.Logger) *MasteryService {
	return &MasteryService{
		resolver: resolver,
		logger:   logger,
		mastered: make(map[int64]struct{}),
		hunter:   make(map[int64]struct{}),
	}
}

// Classify runs one pass over the top candidates by playtime and returns
// the updated mastered set and the fresh hunter set.
func (s *MasteryService) Classify(ctx context.Context, steamID string, games []domain.Game) (map[int64]struct{}, map[int64]struct{}) {
	candidates := TopByPlaytime(games, constants.MasteryCandidateLimit)
	s.logger.Info().Str("steam_id", steamID).Int("candidates", len(candidates)).Msg("starting mastery pass")

	sem := semaphore.NewWeighted(constants.MaxConcurrentResolves)
	var wg sync.WaitGroup
	var resultMu sync.Mutex
	found := make(map[int64]struct{})
	hunter := make(map[int64]struct{})

	for _, g := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(g domain.Game) {
			defer wg.Done()
			defer sem.Release(1)

			set := s.resolveWithBackoff(ctx, steamID, g.AppID)
			// A failed resolve is "unknown", not "not mastered"; games
			// without achievements are neither.
			if set == nil || !set.PlayerDataOK || len(set.Achievements) == 0 {
				return
			}

			achieved := 0
			for _, a := range set.Achievements {
				if a.Achieved {
					achieved++
				}
			}
			ratio := float64(achieved) / float64(len(set.Achievements))

			resultMu.Lock()
			defer resultMu.Unlock()
			switch {
			case ratio == 1:
				found[g.AppID] = struct{}{}
			case ratio >= 0.5:
				hunter[g.AppID] = struct{}{}
			}
		}(g)
	}
	wg.Wait()

	s.mu.Lock()
	s.mastered = MergeMastered(s.mastered, found)
	s.hunter = hunter
	mastered := cloneSet(s.mastered)
	hunterOut := cloneSet(s.hunter)
	s.mu.Unlock()

	s.logger.Info().
		Str("steam_id", steamID).
		Int("mastered", len(mastered)).
		Int("hunter", len(hunterOut)).
		Msg("mastery pass completed")

	return mastered, hunterOut
}

// Current returns snapshots of the session's mastered and latest hunter
// sets without running a pass.
func (s *MasteryService) Current() (map[int64]struct{}, map[int64]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSet(s.mastered), cloneSet(s.hunter)
}

func (s *MasteryService) resolveWithBackoff(ctx context.Context, steamID string, appID int64) *domain.AchievementSet {
	var set *domain.AchievementSet
	backoff := retry.WithMaxRetries(constants.MasteryMaxRetries, retry.NewFibonacci(constants.MasteryBackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		set = s.resolver.Resolve(ctx, steamID, appID)
		if set.Throttled {
			return retry.RetryableError(errors.New("upstream throttled"))
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Int64("app_id", appID).Msg("resolve still throttled after backoff")
	}
	return set
}

// MergeMastered is the monotone-union merge: the result contains every
// id from the previous set plus every newly found one. Never shrinks.
func MergeMastered(prev, found map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(prev)+len(found))
	for id := range prev {
		out[id] = struct{}{}
	}
	for id := range found {
		out[id] = struct{}{}
	}
	return out
}

// TopByPlaytime returns the n games with the highest total playtime,
// without mutating the input.
func TopByPlaytime(games []domain.Game, n int) []domain.Game {
	sorted := make([]domain.Game, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPlaytime > sorted[j].TotalPlaytime
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func cloneSet(in map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}
