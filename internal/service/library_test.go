package service

import (
	"context"
	"testing"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/config"
	"vanguard-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLibraryService(gw Gateway) *LibraryService {
	return NewLibraryService(gw, &config.Config{
		CoopGameID:   480,
		CoopGameName: "Vanguard Co-Op",
	}, zerolog.Nop())
}

func TestAggregate(t *testing.T) {
	svc := newLibraryService(nil)

	t.Run("max rule reconciles divergent totals", func(t *testing.T) {
		owned := []domain.Game{{AppID: 10, Name: "Alpha", TotalPlaytime: 100}}
		recent := []domain.Game{{AppID: 10, Name: "Alpha", TotalPlaytime: 120, RecentPlaytime: 30}}

		out := svc.Aggregate(owned, recent)

		require.Len(t, out, 1)
		assert.Equal(t, 120, out[0].TotalPlaytime)
		assert.Equal(t, 30, out[0].RecentPlaytime)
	})

	t.Run("owned total wins when larger", func(t *testing.T) {
		owned := []domain.Game{{AppID: 10, TotalPlaytime: 200}}
		recent := []domain.Game{{AppID: 10, TotalPlaytime: 150, RecentPlaytime: 30}}

		out := svc.Aggregate(owned, recent)

		require.Len(t, out, 1)
		assert.Equal(t, 200, out[0].TotalPlaytime)
	})

	t.Run("idempotent", func(t *testing.T) {
		owned := []domain.Game{
			{AppID: 10, Name: "Alpha", TotalPlaytime: 100},
			{AppID: 20, Name: "Beta", TotalPlaytime: 50},
		}
		recent := []domain.Game{{AppID: 10, TotalPlaytime: 120, RecentPlaytime: 30}}

		first := svc.Aggregate(owned, recent)
		second := svc.Aggregate(owned, recent)
		assert.Equal(t, first, second)
	})

	t.Run("re-aggregating with empty recent keeps merged playtime", func(t *testing.T) {
		owned := []domain.Game{{AppID: 10, Name: "Alpha", TotalPlaytime: 100}}
		recent := []domain.Game{{AppID: 10, TotalPlaytime: 120, RecentPlaytime: 30}}

		merged := svc.Aggregate(owned, recent)
		again := svc.Aggregate(merged, nil)

		require.Len(t, again, 1)
		assert.Equal(t, 120, again[0].TotalPlaytime)
	})

	t.Run("pseudo-game synthesized from recent only", func(t *testing.T) {
		owned := []domain.Game{{AppID: 10, Name: "Alpha", TotalPlaytime: 100}}
		recent := []domain.Game{{AppID: 480, Name: "Spacewar", TotalPlaytime: 42, RecentPlaytime: 42}}

		out := svc.Aggregate(owned, recent)

		require.Len(t, out, 2)
		var coop *domain.Game
		for i := range out {
			if out[i].AppID == 480 {
				coop = &out[i]
			}
		}
		require.NotNil(t, coop)
		assert.Equal(t, 42, coop.TotalPlaytime)
		assert.Equal(t, "Vanguard Co-Op", coop.Name)
	})

	t.Run("pseudo-game not duplicated when owned", func(t *testing.T) {
		owned := []domain.Game{{AppID: 480, Name: "Spacewar", TotalPlaytime: 10}}
		recent := []domain.Game{{AppID: 480, Name: "Spacewar", TotalPlaytime: 15, RecentPlaytime: 5}}

		out := svc.Aggregate(owned, recent)

		require.Len(t, out, 1)
		assert.Equal(t, "Vanguard Co-Op", out[0].Name)
		assert.Equal(t, 15, out[0].TotalPlaytime)
	})
}

func TestGetLibrary_RecentFailureTolerated(t *testing.T) {
	gw := &stubGateway{
		owned: func(ctx context.Context, steamID string) (*api.OwnedGamesResponse, error) {
			resp := &api.OwnedGamesResponse{}
			resp.Response.Games = []api.GameEntry{{AppID: 10, Name: "Alpha", PlaytimeForever: 100}}
			return resp, nil
		},
		recent: func(ctx context.Context, steamID string) (*api.RecentlyPlayedResponse, error) {
			return nil, &api.TransportError{Err: context.DeadlineExceeded}
		},
	}

	svc := newLibraryService(gw)
	games, err := svc.GetLibrary(context.Background(), "76561198000000000")

	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Alpha", games[0].Name)
}

func TestGetLibrary_OwnedFailureFatal(t *testing.T) {
	gw := &stubGateway{
		owned: func(ctx context.Context, steamID string) (*api.OwnedGamesResponse, error) {
			return nil, api.ErrNoCredential
		},
	}

	svc := newLibraryService(gw)
	_, err := svc.GetLibrary(context.Background(), "76561198000000000")
	assert.ErrorIs(t, err, api.ErrNoCredential)
}

func TestSearchSuggestions(t *testing.T) {
	svc := newLibraryService(nil)
	games := []domain.Game{
		{AppID: 1, Name: "Half-Life 2"},
		{AppID: 2, Name: "Portal"},
		{AppID: 3, Name: "Team Fortress 2"},
	}

	matches := svc.SearchSuggestions(games, "prtl")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Portal", matches[0].Name)

	assert.Nil(t, svc.SearchSuggestions(games, ""))
}
