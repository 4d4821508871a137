package vault

import (
	"testing"

	"vanguard-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	emptySet = map[int64]struct{}{}
	noFacets = map[int64]domain.FacetEntry{}
)

func names(groups []GroupedGames) []string {
	var out []string
	for _, grp := range groups {
		for _, g := range grp.Games {
			out = append(out, g.Name)
		}
	}
	return out
}

func labels(groups []GroupedGames) []string {
	out := make([]string, 0, len(groups))
	for _, grp := range groups {
		out = append(out, grp.Label)
	}
	return out
}

func TestBuildView_FilterThenSort(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "Alpha Quest", TotalPlaytime: 50},
		{AppID: 2, Name: "Beta Quest", TotalPlaytime: 200},
		{AppID: 3, Name: "Gamma", TotalPlaytime: 999},
	}

	view := BuildView(games, emptySet, emptySet, emptySet, noFacets, domain.VaultQuery{
		TextFilter: "quest",
		SortKey:    domain.SortPlaytime,
	})

	// The filter drops Gamma before the sort runs, so the highest
	// playtime game never appears.
	require.Len(t, view, 1)
	assert.Equal(t, "All", view[0].Label)
	assert.Equal(t, []string{"Beta Quest", "Alpha Quest"}, names(view))
}

func TestBuildView_TextFilterCaseInsensitive(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "PORTAL"},
		{AppID: 2, Name: "Half-Life"},
	}

	view := BuildView(games, emptySet, emptySet, emptySet, noFacets, domain.VaultQuery{TextFilter: "portal"})
	assert.Equal(t, []string{"PORTAL"}, names(view))
}

func TestBuildView_StatusFilters(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "Done", TotalPlaytime: 100},
		{AppID: 2, Name: "Hidden", TotalPlaytime: 100},
		{AppID: 3, Name: "Fresh", RecentPlaytime: 30, TotalPlaytime: 100},
		{AppID: 4, Name: "Chasing", TotalPlaytime: 100},
		{AppID: 5, Name: "Plain", TotalPlaytime: 100},
	}
	blacklist := map[int64]struct{}{2: {}}
	mastered := map[int64]struct{}{1: {}}
	hunter := map[int64]struct{}{4: {}}

	cases := []struct {
		status domain.StatusFilter
		want   []string
	}{
		{domain.StatusMastered, []string{"Done"}},
		{domain.StatusBlacklisted, []string{"Hidden"}},
		{domain.StatusActive, []string{"Fresh"}},
		{domain.StatusHunter, []string{"Chasing"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			view := BuildView(games, blacklist, mastered, hunter, noFacets, domain.VaultQuery{
				StatusFilter: tc.status,
				SortKey:      domain.SortName,
			})
			assert.Equal(t, tc.want, names(view))
		})
	}

	t.Run("blacklisted games stay in the all view", func(t *testing.T) {
		view := BuildView(games, blacklist, mastered, hunter, noFacets, domain.VaultQuery{
			StatusFilter: domain.StatusAll,
			SortKey:      domain.SortName,
		})
		assert.Contains(t, names(view), "Hidden")
	})
}

func TestBuildView_GenreFilterAND(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "Both"},
		{AppID: 2, Name: "OnlyRPG"},
		{AppID: 3, Name: "Unscanned"},
	}
	facets := map[int64]domain.FacetEntry{
		1: {Genres: []string{"RPG", "Action"}},
		2: {Genres: []string{"RPG"}},
	}

	view := BuildView(games, emptySet, emptySet, emptySet, facets, domain.VaultQuery{
		GenreFilter: []string{"RPG", "Action"},
	})

	// AND semantics; games without a cached facet entry drop out while a
	// genre filter is active.
	assert.Equal(t, []string{"Both"}, names(view))
}

func TestSortGames(t *testing.T) {
	facets := map[int64]domain.FacetEntry{
		1: {MetacriticScore: 70, ReleaseDate: "11 Jan, 2020"},
		2: {MetacriticScore: 90, ReleaseDate: "9 Feb, 2021"},
	}
	base := []domain.Game{
		{AppID: 1, Name: "Beta", TotalPlaytime: 100, RecentPlaytime: 5},
		{AppID: 2, Name: "Alpha", TotalPlaytime: 50, RecentPlaytime: 40},
	}

	run := func(key domain.SortKey) []string {
		view := BuildView(base, emptySet, emptySet, emptySet, facets, domain.VaultQuery{SortKey: key})
		return names(view)
	}

	assert.Equal(t, []string{"Beta", "Alpha"}, run(domain.SortPlaytime))
	assert.Equal(t, []string{"Alpha", "Beta"}, run(domain.SortName))
	assert.Equal(t, []string{"Alpha", "Beta"}, run(domain.SortRecency))
	assert.Equal(t, []string{"Alpha", "Beta"}, run(domain.SortMetacritic))
	// Release date sorts the raw upstream text, so "9 Feb" beats "11 Jan"
	// lexicographically regardless of the calendar.
	assert.Equal(t, []string{"Alpha", "Beta"}, run(domain.SortReleaseDate))
	// Unknown key falls back to playtime.
	assert.Equal(t, []string{"Beta", "Alpha"}, run(domain.SortKey("bogus")))
}

func TestBuildView_GroupAlphabetical(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "alpha"},
		{AppID: 2, Name: "Apex"},
		{AppID: 3, Name: "Zed"},
		{AppID: 4, Name: "7 Days"},
	}

	view := BuildView(games, emptySet, emptySet, emptySet, noFacets, domain.VaultQuery{
		SortKey:  domain.SortName,
		Grouping: domain.GroupAlphabetical,
	})

	assert.Equal(t, []string{"#", "A", "Z"}, labels(view))
	assert.Equal(t, []string{"7 Days"}, names(view[:1]))
	assert.ElementsMatch(t, []string{"alpha", "Apex"}, names(view[1:2]))
}

func TestBuildView_GroupStatusBands(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "Champion", TotalPlaytime: 30},
		{AppID: 2, Name: "Grinder", TotalPlaytime: 900},
		{AppID: 3, Name: "Starter", TotalPlaytime: 90},
		{AppID: 4, Name: "Shelf", TotalPlaytime: 0},
	}
	mastered := map[int64]struct{}{1: {}}

	view := BuildView(games, emptySet, mastered, emptySet, noFacets, domain.VaultQuery{
		Grouping: domain.GroupStatusBand,
	})

	// Mastered wins over the playtime bands; empty bands are omitted.
	assert.Equal(t, []string{"Mastered", "Veteran", "Deploying", "Unplayed"}, labels(view))
	assert.Equal(t, []string{"Champion"}, names(view[:1]))
	assert.Equal(t, []string{"Grinder"}, names(view[1:2]))
	assert.Equal(t, []string{"Starter"}, names(view[2:3]))
	assert.Equal(t, []string{"Shelf"}, names(view[3:]))
}

func TestBuildView_DoesNotMutateInput(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, Name: "B", TotalPlaytime: 10},
		{AppID: 2, Name: "A", TotalPlaytime: 20},
	}

	BuildView(games, emptySet, emptySet, emptySet, noFacets, domain.VaultQuery{SortKey: domain.SortName})

	assert.Equal(t, "B", games[0].Name)
	assert.Equal(t, "A", games[1].Name)
}

func TestDiscoveryPool(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, TotalPlaytime: 0},
		{AppID: 2, TotalPlaytime: 0},
		{AppID: 3, TotalPlaytime: 50},
	}
	blacklist := map[int64]struct{}{2: {}}

	pool := DiscoveryPool(games, blacklist)

	require.Len(t, pool, 1)
	assert.Equal(t, int64(1), pool[0].AppID)
}

func TestRandomPick(t *testing.T) {
	games := []domain.Game{
		{AppID: 1}, {AppID: 2}, {AppID: 3}, {AppID: 4},
	}
	blacklist := map[int64]struct{}{4: {}}

	picks := RandomPick(games, blacklist, 2)

	require.Len(t, picks, 2)
	for _, g := range picks {
		assert.NotEqual(t, int64(4), g.AppID)
	}
}
