package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
)

// privateProfileError is the exact string the upstream uses for hidden
// game details; it is the only business error the resolver interprets.
const privateProfileError = "Profile is not public"

type AchievementService struct {
	gw     Gateway
	cache  *lru.Cache
	logger zerolog.Logger
}

func NewAchievementService(gw Gateway, logger zerolog.Logger) *AchievementService {
	cache, _ := lru.New(constants.AchievementCacheSize)
	return &AchievementService{gw: gw, cache: cache, logger: logger}
}

// Resolve merges the player-state, schema and global-percentage
// fragments for one (account, game) pair. It never fails: every outcome
// is a renderable AchievementSet, degraded to empty fragments if needed.
func (s *AchievementService) Resolve(ctx context.Context, steamID string, appID int64) *domain.AchievementSet {
	key := fmt.Sprintf("%s/%d", steamID, appID)
	if v, ok := s.cache.Get(key); ok {
		return v.(*domain.AchievementSet)
	}

	set := s.resolve(ctx, steamID, appID)
	if set.PlayerDataOK && !set.Throttled {
		s.cache.Add(key, set)
	}
	return set
}

func (s *AchievementService) resolve(ctx context.Context, steamID string, appID int64) (set *domain.AchievementSet) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("steam_id", steamID).Int64("app_id", appID).Msg("achievement resolve panicked, returning empty set")
			set = &domain.AchievementSet{}
		}
	}()

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	// Three independent fetches; each outcome is captured individually.
	// A WaitGroup rather than an errgroup: one fragment failing must not
	// cancel its siblings.
	var (
		playerResp *api.PlayerAchievementsResponse
		schemaResp *api.GameSchemaResponse
		globalResp *api.GlobalPercentagesResponse
		playerErr  error
		schemaErr  error
		globalErr  error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		playerResp, playerErr = s.gw.GetPlayerAchievements(apiCtx, steamID, appID)
	}()
	go func() {
		defer wg.Done()
		schemaResp, schemaErr = s.gw.GetSchemaForGame(apiCtx, appID)
	}()
	go func() {
		defer wg.Done()
		globalResp, globalErr = s.gw.GetGlobalAchievementPercentages(apiCtx, appID)
	}()
	wg.Wait()

	set = &domain.AchievementSet{}

	schemaByName := make(map[string]api.SchemaAchievement)
	if schemaErr == nil && schemaResp != nil {
		set.SchemaOK = true
		set.GameName = schemaResp.Game.GameName
		for _, a := range schemaResp.Game.AvailableGameStats.Achievements {
			schemaByName[a.Name] = a
		}
	} else if schemaErr != nil {
		s.logger.Debug().Err(schemaErr).Int64("app_id", appID).Msg("schema fetch failed")
	}

	globalByName := make(map[string]float64)
	if globalErr == nil && globalResp != nil {
		set.GlobalsOK = true
		for _, a := range globalResp.AchievementPercentages.Achievements {
			// Missing or non-numeric percent counts as zero.
			f, err := a.Percent.Float64()
			if err != nil {
				f = 0
			}
			globalByName[a.Name] = f
		}
	} else if globalErr != nil {
		s.logger.Debug().Err(globalErr).Int64("app_id", appID).Msg("global percentages fetch failed")
	}

	if playerErr != nil {
		if api.IsRateLimited(playerErr) {
			set.Throttled = true
		}
		// The upstream reports a private profile inside a non-2xx body;
		// surface it as a specific state, not a generic failure.
		var ue *api.UpstreamError
		if errors.As(playerErr, &ue) {
			var body api.PlayerAchievementsResponse
			if json.Unmarshal(ue.Body, &body) == nil && body.PlayerStats.Error == privateProfileError {
				set.PrivateProfile = true
				return set
			}
		}
		s.logger.Debug().Err(playerErr).Str("steam_id", steamID).Int64("app_id", appID).Msg("player achievements fetch failed")
		return set
	}

	if playerResp.PlayerStats.Error == privateProfileError {
		set.PrivateProfile = true
		return set
	}
	if !playerResp.PlayerStats.Success && playerResp.PlayerStats.Error != "" {
		// Some other 200-encoded business error, e.g. the game has no
		// stats. Player data stays unavailable.
		s.logger.Debug().Str("upstream_error", playerResp.PlayerStats.Error).Int64("app_id", appID).Msg("player achievements unavailable")
		return set
	}

	set.PlayerDataOK = true
	if set.GameName == "" {
		set.GameName = playerResp.PlayerStats.GameName
	}

	for _, pa := range playerResp.PlayerStats.Achievements {
		rec := domain.AchievementRecord{
			APIName:       pa.APIName,
			DisplayName:   pa.APIName, // fallback when schema is missing
			Achieved:      pa.Achieved == 1,
			GlobalPercent: globalByName[pa.APIName],
		}
		if sa, ok := schemaByName[pa.APIName]; ok {
			rec.DisplayName = sa.DisplayName
			rec.Description = sa.Description
			rec.IconURL = sa.Icon
			rec.IconGrayURL = sa.IconGray
		}
		set.Achievements = append(set.Achievements, rec)
	}

	SortAchievements(set.Achievements)
	return set
}

// SortAchievements orders locked achievements first, and within the same
// locked/unlocked state the most commonly completed first.
func SortAchievements(recs []domain.AchievementRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Achieved != recs[j].Achieved {
			return !recs[i].Achieved
		}
		return recs[i].GlobalPercent > recs[j].GlobalPercent
	})
}
