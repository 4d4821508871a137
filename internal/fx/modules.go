package fx

import (
	"database/sql"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/assistant"
	"vanguard-backend/internal/config"
	"vanguard-backend/internal/database"
	"vanguard-backend/internal/logger"
	"vanguard-backend/internal/server"
	"vanguard-backend/internal/service"
	"vanguard-backend/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideStore(db *sql.DB, log zerolog.Logger) store.Store {
	return store.NewSQLiteStore(db, log)
}

func ProvideGateway(c *api.SteamClient) service.Gateway { return c }

func ProvideStorefront(c *api.SteamClient) service.Storefront { return c }

func ProvideResolver(s *service.AchievementService) service.Resolver { return s }

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideStore),
	// api client
	fx.Provide(api.NewSteamClient),
	fx.Provide(ProvideGateway),
	fx.Provide(ProvideStorefront),
	// svc
	fx.Provide(service.NewLibraryService),
	fx.Provide(service.NewSocialService),
	fx.Provide(service.NewAchievementService),
	fx.Provide(ProvideResolver),
	fx.Provide(service.NewMasteryService),
	fx.Provide(service.NewFacetService),
	fx.Provide(service.NewBlacklistService),
	fx.Provide(service.NewNotesService),
	// assistant sidecar
	fx.Provide(assistant.NewClient),
	fx.Provide(assistant.NewPoller),
	// server
	fx.Provide(server.NewServer),
)
