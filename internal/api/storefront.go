package api

import (
	"context"
	"fmt"
)

const storefrontBase = "https://store.steampowered.com/api"

// GetAppDetails fetches storefront metadata for one game. No credential
// required upstream, but the endpoint is aggressively rate-limited;
// callers batch and pace their own requests.
func (c *SteamClient) GetAppDetails(ctx context.Context, appID int64) (*AppDetails, error) {
	u := fmt.Sprintf("%s/appdetails?appids=%d", storefrontBase, appID)

	envelope, err := doRequest[map[string]appDetailsEnvelope](ctx, c, u)
	if err != nil {
		return nil, err
	}

	entry, ok := (*envelope)[fmt.Sprintf("%d", appID)]
	if !ok || !entry.Success {
		return nil, ErrAppUnavailable
	}
	return &entry.Data, nil
}

type appDetailsEnvelope struct {
	Success bool       `json:"success"`
	Data    AppDetails `json:"data"`
}

type AppDetails struct {
	Name       string   `json:"name"`
	Genres     []AppTag `json:"genres"`
	Categories []AppTag `json:"categories"`
	Metacritic struct {
		Score int `json:"score"`
	} `json:"metacritic"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
}

type AppTag struct {
	Description string `json:"description"`
}
