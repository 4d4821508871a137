package service

import (
	"context"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/domain"
)

// Gateway is the slice of the upstream client the services consume.
// Tests substitute stubs; production wires *api.SteamClient.
type Gateway interface {
	GetPlayerSummaries(ctx context.Context, steamID string) (*api.PlayerSummariesResponse, error)
	GetPlayerSummariesBatch(ctx context.Context, steamIDs []string) (*api.PlayerSummariesResponse, error)
	GetOwnedGames(ctx context.Context, steamID string) (*api.OwnedGamesResponse, error)
	GetRecentlyPlayedGames(ctx context.Context, steamID string) (*api.RecentlyPlayedResponse, error)
	GetFriendList(ctx context.Context, steamID string) (*api.FriendListResponse, error)
	GetPlayerAchievements(ctx context.Context, steamID string, appID int64) (*api.PlayerAchievementsResponse, error)
	GetSchemaForGame(ctx context.Context, appID int64) (*api.GameSchemaResponse, error)
	GetGlobalAchievementPercentages(ctx context.Context, appID int64) (*api.GlobalPercentagesResponse, error)
}

// Storefront is the keyless store-metadata endpoint.
type Storefront interface {
	GetAppDetails(ctx context.Context, appID int64) (*api.AppDetails, error)
}

// Resolver produces the merged achievement view for one (account, game)
// pair. Implemented by AchievementService.
type Resolver interface {
	Resolve(ctx context.Context, steamID string, appID int64) *domain.AchievementSet
}
