package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"vanguard-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const apiBase = "https://api.steampowered.com"

// SteamClient is the upstream gateway. It holds the mutable API
// credential (last write wins, process-wide) and forwards typed requests
// without transforming their payloads.
type SteamClient struct {
	credMu sync.RWMutex
	apiKey string

	client *fasthttp.Client
	logger zerolog.Logger
}

func NewSteamClient(cfg *config.Config, logger zerolog.Logger) *SteamClient {
	return &SteamClient{
		apiKey: cfg.SteamAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// SetCredential replaces the active credential. Only a masked form is
// ever logged.
func (c *SteamClient) SetCredential(key string) {
	c.credMu.Lock()
	c.apiKey = key
	c.credMu.Unlock()

	c.logger.Info().Str("key", MaskCredential(key)).Msg("API credential updated")
}

func (c *SteamClient) HasCredential() bool {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.apiKey != ""
}

func (c *SteamClient) credential() string {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.apiKey
}

// MaskCredential keeps the first and last four characters and elides the
// rest, so secrets never land in logs whole.
func MaskCredential(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// keyedURL builds an API URL with the credential as a query parameter,
// or fails with ErrNoCredential before any network traffic.
func (c *SteamClient) keyedURL(path string, params url.Values) (string, error) {
	key := c.credential()
	if key == "" {
		return "", ErrNoCredential
	}
	params.Set("key", key)
	return fmt.Sprintf("%s%s?%s", apiBase, path, params.Encode()), nil
}

func (c *SteamClient) GetPlayerSummaries(ctx context.Context, steamID string) (*PlayerSummariesResponse, error) {
	u, err := c.keyedURL("/ISteamUser/GetPlayerSummaries/v2/", url.Values{"steamids": {steamID}})
	if err != nil {
		return nil, err
	}
	return doRequest[PlayerSummariesResponse](ctx, c, u)
}

func (c *SteamClient) GetPlayerSummariesBatch(ctx context.Context, steamIDs []string) (*PlayerSummariesResponse, error) {
	u, err := c.keyedURL("/ISteamUser/GetPlayerSummaries/v2/", url.Values{"steamids": {strings.Join(steamIDs, ",")}})
	if err != nil {
		return nil, err
	}
	return doRequest[PlayerSummariesResponse](ctx, c, u)
}

func (c *SteamClient) GetOwnedGames(ctx context.Context, steamID string) (*OwnedGamesResponse, error) {
	u, err := c.keyedURL("/IPlayerService/GetOwnedGames/v1/", url.Values{
		"steamid":                   {steamID},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
	})
	if err != nil {
		return nil, err
	}
	return doRequest[OwnedGamesResponse](ctx, c, u)
}

func (c *SteamClient) GetRecentlyPlayedGames(ctx context.Context, steamID string) (*RecentlyPlayedResponse, error) {
	u, err := c.keyedURL("/IPlayerService/GetRecentlyPlayedGames/v1/", url.Values{"steamid": {steamID}})
	if err != nil {
		return nil, err
	}
	return doRequest[RecentlyPlayedResponse](ctx, c, u)
}

func (c *SteamClient) GetFriendList(ctx context.Context, steamID string) (*FriendListResponse, error) {
	u, err := c.keyedURL("/ISteamUser/GetFriendList/v1/", url.Values{
		"steamid":      {steamID},
		"relationship": {"friend"},
	})
	if err != nil {
		return nil, err
	}
	return doRequest[FriendListResponse](ctx, c, u)
}

func (c *SteamClient) GetPlayerAchievements(ctx context.Context, steamID string, appID int64) (*PlayerAchievementsResponse, error) {
	u, err := c.keyedURL("/ISteamUserStats/GetPlayerAchievements/v1/", url.Values{
		"steamid": {steamID},
		"appid":   {fmt.Sprintf("%d", appID)},
	})
	if err != nil {
		return nil, err
	}
	return doRequest[PlayerAchievementsResponse](ctx, c, u)
}

func (c *SteamClient) GetSchemaForGame(ctx context.Context, appID int64) (*GameSchemaResponse, error) {
	u, err := c.keyedURL("/ISteamUserStats/GetSchemaForGame/v2/", url.Values{
		"appid": {fmt.Sprintf("%d", appID)},
	})
	if err != nil {
		return nil, err
	}
	return doRequest[GameSchemaResponse](ctx, c, u)
}

// GetGlobalAchievementPercentages needs no credential upstream.
func (c *SteamClient) GetGlobalAchievementPercentages(ctx context.Context, appID int64) (*GlobalPercentagesResponse, error) {
	u := fmt.Sprintf("%s/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/?gameid=%d", apiBase, appID)
	return doRequest[GlobalPercentagesResponse](ctx, c, u)
}

func doRequest[T any](ctx context.Context, client *SteamClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, &TransportError{Err: err}
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return nil, &UpstreamError{Status: resp.StatusCode(), Body: body}
	}

	// 200-with-error-body responses decode here unmodified; interpreting
	// them is the caller's job.
	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &result, nil
}

type PlayerSummariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	AvatarFull   string `json:"avatarfull"`
	PersonaState int    `json:"personastate"`
}

type OwnedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []GameEntry `json:"games"`
	} `json:"response"`
}

type RecentlyPlayedResponse struct {
	Response struct {
		TotalCount int         `json:"total_count"`
		Games      []GameEntry `json:"games"`
	} `json:"response"`
}

type GameEntry struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks"`
	ImgIconURL      string `json:"img_icon_url"`
}

type FriendListResponse struct {
	FriendsList struct {
		Friends []Friend `json:"friends"`
	} `json:"friendslist"`
}

type Friend struct {
	SteamID      string `json:"steamid"`
	Relationship string `json:"relationship"`
	FriendSince  int64  `json:"friend_since"`
}

type PlayerAchievementsResponse struct {
	PlayerStats struct {
		SteamID      string              `json:"steamID"`
		GameName     string              `json:"gameName"`
		Achievements []PlayerAchievement `json:"achievements"`
		Success      bool                `json:"success"`
		Error        string              `json:"error"`
	} `json:"playerstats"`
}

type PlayerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
}

type GameSchemaResponse struct {
	Game struct {
		GameName           string `json:"gameName"`
		AvailableGameStats struct {
			Achievements []SchemaAchievement `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

type SchemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Hidden      int    `json:"hidden"`
}

type GlobalPercentagesResponse struct {
	AchievementPercentages struct {
		Achievements []GlobalAchievement `json:"achievements"`
	} `json:"achievementpercentages"`
}

type GlobalAchievement struct {
	Name string `json:"name"`
	// Upstream has shipped this as both a JSON number and a string.
	Percent json.Number `json:"percent"`
}
