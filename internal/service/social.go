package service

import (
	"context"
	"fmt"

	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"

	"github.com/rs/zerolog"
)

type SocialService struct {
	gw     Gateway
	logger zerolog.Logger
}

func NewSocialService(gw Gateway, logger zerolog.Logger) *SocialService {
	return &SocialService{gw: gw, logger: logger}
}

func (s *SocialService) GetProfile(ctx context.Context, steamID string) (*domain.Profile, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	resp, err := s.gw.GetPlayerSummaries(apiCtx, steamID)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to fetch profile")
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if len(resp.Response.Players) == 0 {
		return nil, fmt.Errorf("no profile for %s", steamID)
	}

	p := resp.Response.Players[0]
	return &domain.Profile{
		SteamID:      p.SteamID,
		PersonaName:  p.PersonaName,
		AvatarURL:    p.AvatarFull,
		PersonaState: p.PersonaState,
	}, nil
}

// GetFriends is the two-step friends fetch: the friend list, then
// summaries for the first FriendSummaryLimit ids.
func (s *SocialService) GetFriends(ctx context.Context, steamID string) ([]domain.Profile, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	friends, err := s.gw.GetFriendList(apiCtx, steamID)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to fetch friend list")
		return nil, fmt.Errorf("failed to fetch friend list: %w", err)
	}

	ids := make([]string, 0, constants.FriendSummaryLimit)
	for _, f := range friends.FriendsList.Friends {
		if len(ids) == constants.FriendSummaryLimit {
			break
		}
		ids = append(ids, f.SteamID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	summaries, err := s.gw.GetPlayerSummariesBatch(apiCtx, ids)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to fetch friend summaries")
		return nil, fmt.Errorf("failed to fetch friend summaries: %w", err)
	}

	out := make([]domain.Profile, 0, len(summaries.Response.Players))
	for _, p := range summaries.Response.Players {
		out = append(out, domain.Profile{
			SteamID:      p.SteamID,
			PersonaName:  p.PersonaName,
			AvatarURL:    p.AvatarFull,
			PersonaState: p.PersonaState,
		})
	}

	s.logger.Info().Str("steam_id", steamID).Int("count", len(out)).Msg("friends fetched")
	return out, nil
}
