package service

import (
	"context"
	"sync"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/domain"
)

// stubGateway lets each test wire just the endpoints it cares about;
// everything else answers empty.
type stubGateway struct {
	owned  func(ctx context.Context, steamID string) (*api.OwnedGamesResponse, error)
	recent func(ctx context.Context, steamID string) (*api.RecentlyPlayedResponse, error)
	player func(ctx context.Context, steamID string, appID int64) (*api.PlayerAchievementsResponse, error)
	schema func(ctx context.Context, appID int64) (*api.GameSchemaResponse, error)
	global func(ctx context.Context, appID int64) (*api.GlobalPercentagesResponse, error)
}

func (s *stubGateway) GetPlayerSummaries(ctx context.Context, steamID string) (*api.PlayerSummariesResponse, error) {
	return &api.PlayerSummariesResponse{}, nil
}

func (s *stubGateway) GetPlayerSummariesBatch(ctx context.Context, steamIDs []string) (*api.PlayerSummariesResponse, error) {
	return &api.PlayerSummariesResponse{}, nil
}

func (s *stubGateway) GetOwnedGames(ctx context.Context, steamID string) (*api.OwnedGamesResponse, error) {
	if s.owned != nil {
		return s.owned(ctx, steamID)
	}
	return &api.OwnedGamesResponse{}, nil
}

func (s *stubGateway) GetRecentlyPlayedGames(ctx context.Context, steamID string) (*api.RecentlyPlayedResponse, error) {
	if s.recent != nil {
		return s.recent(ctx, steamID)
	}
	return &api.RecentlyPlayedResponse{}, nil
}

func (s *stubGateway) GetFriendList(ctx context.Context, steamID string) (*api.FriendListResponse, error) {
	return &api.FriendListResponse{}, nil
}

func (s *stubGateway) GetPlayerAchievements(ctx context.Context, steamID string, appID int64) (*api.PlayerAchievementsResponse, error) {
	if s.player != nil {
		return s.player(ctx, steamID, appID)
	}
	return &api.PlayerAchievementsResponse{}, nil
}

func (s *stubGateway) GetSchemaForGame(ctx context.Context, appID int64) (*api.GameSchemaResponse, error) {
	if s.schema != nil {
		return s.schema(ctx, appID)
	}
	return &api.GameSchemaResponse{}, nil
}

func (s *stubGateway) GetGlobalAchievementPercentages(ctx context.Context, appID int64) (*api.GlobalPercentagesResponse, error) {
	if s.global != nil {
		return s.global(ctx, appID)
	}
	return &api.GlobalPercentagesResponse{}, nil
}

// stubResolver maps app ids to fixed achievement sets. Safe for the
// classifier's concurrent calls.
type stubResolver struct {
	sets map[int64]*domain.AchievementSet

	mu    sync.Mutex
	calls []int64
}

func (s *stubResolver) Resolve(ctx context.Context, steamID string, appID int64) *domain.AchievementSet {
	s.mu.Lock()
	s.calls = append(s.calls, appID)
	s.mu.Unlock()

	if set, ok := s.sets[appID]; ok {
		return set
	}
	return &domain.AchievementSet{}
}

func (s *stubResolver) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// achievementSetOf builds a PlayerDataOK set with the given number of
// achieved achievements out of total.
func achievementSetOf(achieved, total int) *domain.AchievementSet {
	set := &domain.AchievementSet{PlayerDataOK: true}
	for i := 0; i < total; i++ {
		set.Achievements = append(set.Achievements, domain.AchievementRecord{
			Achieved: i < achieved,
		})
	}
	return set
}
