// Package vault is the pure derivation layer: given the aggregated game
// list, the user's local overrides and the derived classification sets,
// it produces the exact ordered, grouped, filtered view the UI renders.
// No I/O, no clocks, no globals.
package vault

import (
	"sort"
	"strings"
	"unicode"

	"vanguard-backend/internal/domain"
)

// Playtime bands for status grouping, in minutes.
const (
	veteranMinutes   = 600
	deployingMinutes = 60
)

// GroupedGames is one labeled group of an ordered view. Groups are
// returned as an ordered slice because Go maps do not keep order.
type GroupedGames struct {
	Label string        `json:"label"`
	Games []domain.Game `json:"games"`
}

// BuildView runs the full pipeline: text filter, status filter, genre
// filter, sort, then grouping — strictly in that order.
func BuildView(
	games []domain.Game,
	blacklist map[int64]struct{},
	mastered map[int64]struct{},
	hunter map[int64]struct{},
	facets map[int64]domain.FacetEntry,
	q domain.VaultQuery,
) []GroupedGames {
	filtered := filterText(games, q.TextFilter)
	filtered = filterStatus(filtered, q.StatusFilter, blacklist, mastered, hunter)
	filtered = filterGenres(filtered, q.GenreFilter, facets)
	sortGames(filtered, q.SortKey, facets)
	return group(filtered, q.Grouping, mastered)
}

func filterText(games []domain.Game, text string) []domain.Game {
	if text == "" {
		out := make([]domain.Game, len(games))
		copy(out, games)
		return out
	}
	needle := strings.ToLower(text)
	var out []domain.Game
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.Name), needle) {
			out = append(out, g)
		}
	}
	return out
}

func filterStatus(games []domain.Game, status domain.StatusFilter, blacklist, mastered, hunter map[int64]struct{}) []domain.Game {
	if status == domain.StatusAll || status == "" {
		return games
	}
	var out []domain.Game
	for _, g := range games {
		keep := false
		switch status {
		case domain.StatusMastered:
			_, keep = mastered[g.AppID]
		case domain.StatusBlacklisted:
			_, keep = blacklist[g.AppID]
		case domain.StatusActive:
			keep = g.RecentPlaytime > 0
		case domain.StatusHunter:
			_, keep = hunter[g.AppID]
		}
		if keep {
			out = append(out, g)
		}
	}
	return out
}

// filterGenres keeps games whose cached genre list contains every
// requested genre (AND semantics). While any genre filter is active,
// games with no cached facet entry are excluded.
func filterGenres(games []domain.Game, wanted []string, facets map[int64]domain.FacetEntry) []domain.Game {
	if len(wanted) == 0 {
		return games
	}
	var out []domain.Game
	for _, g := range games {
		entry, ok := facets[g.AppID]
		if !ok {
			continue
		}
		have := make(map[string]struct{}, len(entry.Genres))
		for _, genre := range entry.Genres {
			have[genre] = struct{}{}
		}
		all := true
		for _, genre := range wanted {
			if _, ok := have[genre]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, g)
		}
	}
	return out
}

func sortGames(games []domain.Game, key domain.SortKey, facets map[int64]domain.FacetEntry) {
	switch key {
	case domain.SortName:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].Name < games[j].Name
		})
	case domain.SortRecency:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].RecentPlaytime > games[j].RecentPlaytime
		})
	case domain.SortMetacritic:
		sort.SliceStable(games, func(i, j int) bool {
			return facets[games[i].AppID].MetacriticScore > facets[games[j].AppID].MetacriticScore
		})
	case domain.SortReleaseDate:
		// Raw lexicographic comparison of upstream date text. Not a true
		// calendar sort: the upstream formats dates inconsistently.
		// Correcting this would silently reorder existing vaults, so the
		// behavior is kept; changing it is a documented behavior change.
		sort.SliceStable(games, func(i, j int) bool {
			return facets[games[i].AppID].ReleaseDate > facets[games[j].AppID].ReleaseDate
		})
	default:
		// Playtime descending is the default and the fallback for any
		// unrecognized key.
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].TotalPlaytime > games[j].TotalPlaytime
		})
	}
}

func group(games []domain.Game, grouping domain.Grouping, mastered map[int64]struct{}) []GroupedGames {
	switch grouping {
	case domain.GroupAlphabetical:
		return groupAlphabetical(games)
	case domain.GroupStatusBand:
		return groupStatusBands(games, mastered)
	default:
		return []GroupedGames{{Label: "All", Games: games}}
	}
}

func groupAlphabetical(games []domain.Game) []GroupedGames {
	buckets := make(map[string][]domain.Game)
	for _, g := range games {
		label := "#"
		if runes := []rune(g.Name); len(runes) > 0 && unicode.IsLetter(runes[0]) {
			label = string(unicode.ToUpper(runes[0]))
		}
		buckets[label] = append(buckets[label], g)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]GroupedGames, 0, len(labels))
	for _, label := range labels {
		out = append(out, GroupedGames{Label: label, Games: buckets[label]})
	}
	return out
}

// groupStatusBands buckets each game into exactly one band, evaluated in
// priority order: Mastered, then Veteran, Deploying, Unplayed.
func groupStatusBands(games []domain.Game, mastered map[int64]struct{}) []GroupedGames {
	bands := []string{"Mastered", "Veteran", "Deploying", "Unplayed"}
	buckets := make(map[string][]domain.Game, len(bands))

	for _, g := range games {
		var band string
		switch {
		case contains(mastered, g.AppID):
			band = "Mastered"
		case g.TotalPlaytime > veteranMinutes:
			band = "Veteran"
		case g.TotalPlaytime > deployingMinutes:
			band = "Deploying"
		default:
			band = "Unplayed"
		}
		buckets[band] = append(buckets[band], g)
	}

	out := make([]GroupedGames, 0, len(bands))
	for _, band := range bands {
		if games, ok := buckets[band]; ok {
			out = append(out, GroupedGames{Label: band, Games: games})
		}
	}
	return out
}

func contains(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}
