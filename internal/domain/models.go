package domain

// Game is one entry in the aggregated library. Identity is AppID; the
// aggregator may rewrite Name for the configured co-op pseudo-game.
type Game struct {
	AppID          int64  `json:"app_id"`
	Name           string `json:"name"`
	TotalPlaytime  int    `json:"total_playtime"`  // minutes, all time
	RecentPlaytime int    `json:"recent_playtime"` // minutes, last two weeks
	IconHash       string `json:"icon_hash"`
}

type Profile struct {
	SteamID      string `json:"steam_id"`
	PersonaName  string `json:"persona_name"`
	AvatarURL    string `json:"avatar_url"`
	PersonaState int    `json:"persona_state"` // 0 = offline, 1 = online, 2 = busy, ...
}

// AchievementRecord is the merged per-achievement view built from the
// player-state, schema and global-percentage fragments. Not persisted.
type AchievementRecord struct {
	APIName       string  `json:"api_name"`
	DisplayName   string  `json:"display_name"`
	Description   string  `json:"description"`
	IconURL       string  `json:"icon_url"`
	IconGrayURL   string  `json:"icon_gray_url"`
	Achieved      bool    `json:"achieved"`
	GlobalPercent float64 `json:"global_percent"`
}

// AchievementSet is what the resolver hands to callers. It is always
// renderable: a fragment that failed upstream leaves its flag false and
// its data empty rather than surfacing an error.
type AchievementSet struct {
	GameName       string              `json:"game_name"`
	Achievements   []AchievementRecord `json:"achievements"`
	PrivateProfile bool                `json:"private_profile"`
	PlayerDataOK   bool                `json:"player_data_ok"`
	SchemaOK       bool                `json:"schema_ok"`
	GlobalsOK      bool                `json:"globals_ok"`
	Throttled      bool                `json:"-"`
}

// FacetEntry is the cached storefront metadata for one game.
type FacetEntry struct {
	Genres          []string `json:"genres"`
	Categories      []string `json:"categories"`
	MetacriticScore int      `json:"metacritic_score"`
	ReleaseDate     string   `json:"release_date"`
}

type StatusFilter string

const (
	StatusAll         StatusFilter = "all"
	StatusMastered    StatusFilter = "mastered"
	StatusBlacklisted StatusFilter = "blacklisted"
	StatusActive      StatusFilter = "active"
	StatusHunter      StatusFilter = "hunter"
)

type SortKey string

const (
	SortPlaytime    SortKey = "playtime"
	SortName        SortKey = "name"
	SortRecency     SortKey = "recency"
	SortMetacritic  SortKey = "metacritic"
	SortReleaseDate SortKey = "release_date"
)

type Grouping string

const (
	GroupNone         Grouping = "none"
	GroupAlphabetical Grouping = "alphabetical"
	GroupStatusBand   Grouping = "status_band"
)

// VaultQuery describes one requested vault view. Ephemeral, built from
// the UI's router state on every request.
type VaultQuery struct {
	TextFilter   string
	StatusFilter StatusFilter
	GenreFilter  []string // AND semantics
	SortKey      SortKey
	Grouping     Grouping
}
