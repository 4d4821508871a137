package service

import (
	"context"
	"fmt"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/config"
	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"
)

type LibraryService struct {
	gw       Gateway
	coopID   int64
	coopName string
	logger   zerolog.Logger
}

func NewLibraryService(gw Gateway, cfg *config.Config, logger zerolog.Logger) *LibraryService {
	return &LibraryService{
		gw:       gw,
		coopID:   cfg.CoopGameID,
		coopName: cfg.CoopGameName,
		logger:   logger,
	}
}

// GetLibrary fetches the owned and recently-played lists and aggregates
// them into the canonical game list. A recently-played failure is
// tolerated (the overlay is simply empty); an owned-games failure is not.
func (s *LibraryService) GetLibrary(ctx context.Context, steamID string) ([]domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	owned, err := s.gw.GetOwnedGames(apiCtx, steamID)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to fetch owned games")
		return nil, fmt.Errorf("failed to fetch owned games: %w", err)
	}

	var recentGames []api.GameEntry
	recent, err := s.gw.GetRecentlyPlayedGames(apiCtx, steamID)
	if err != nil {
		s.logger.Warn().Err(err).Str("steam_id", steamID).Msg("failed to fetch recently played games, continuing without overlay")
	} else {
		recentGames = recent.Response.Games
	}

	games := s.Aggregate(toDomainGames(owned.Response.Games), toDomainGames(recentGames))
	s.logger.Info().Str("steam_id", steamID).Int("count", len(games)).Msg("library aggregated")
	return games, nil
}

// Aggregate reconciles the owned and recently-played lists into one
// deduplicated library. Order is unspecified; sorting belongs to the
// vault view engine.
func (s *LibraryService) Aggregate(owned, recent []domain.Game) []domain.Game {
	recentByID := make(map[int64]domain.Game, len(recent))
	for _, g := range recent {
		recentByID[g.AppID] = g
	}

	out := make([]domain.Game, 0, len(owned)+1)
	seen := make(map[int64]struct{}, len(owned))
	for _, g := range owned {
		if r, ok := recentByID[g.AppID]; ok {
			g.RecentPlaytime = r.RecentPlaytime
			// The two endpoints sometimes report slightly divergent
			// totals; max reconciles them without double counting.
			if r.TotalPlaytime > g.TotalPlaytime {
				g.TotalPlaytime = r.TotalPlaytime
			}
		}
		if g.AppID == s.coopID {
			g.Name = s.coopName
		}
		seen[g.AppID] = struct{}{}
		out = append(out, g)
	}

	// The owned-games endpoint omits the co-op pseudo-game; synthesize
	// an entry when only the recent list knows about it.
	if r, ok := recentByID[s.coopID]; ok {
		if _, present := seen[s.coopID]; !present {
			r.Name = s.coopName
			out = append(out, r)
		}
	}

	return out
}

// SearchSuggestions fuzzy-matches the query against library names and
// returns the closest games, best match first.
func (s *LibraryService) SearchSuggestions(games []domain.Game, query string) []domain.Game {
	if query == "" {
		return nil
	}

	names := make([]string, len(games))
	for i, g := range games {
		names[i] = g.Name
	}

	matches := fuzzy.Find(query, names)
	if len(matches) > constants.SearchSuggestionLimit {
		matches = matches[:constants.SearchSuggestionLimit]
	}

	out := make([]domain.Game, 0, len(matches))
	for _, m := range matches {
		out = append(out, games[m.Index])
	}
	return out
}

func toDomainGames(entries []api.GameEntry) []domain.Game {
	out := make([]domain.Game, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Game{
			AppID:          e.AppID,
			Name:           e.Name,
			TotalPlaytime:  e.PlaytimeForever,
			RecentPlaytime: e.Playtime2Weeks,
			IconHash:       e.ImgIconURL,
		})
	}
	return out
}
