// Package assistant talks to the local AI sidecar. The sidecar's
// internals are not ours; this is a thin request/response client plus a
// liveness poller.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vanguard-backend/internal/config"
	"vanguard-backend/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Client struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.AssistantURL,
		client: &fasthttp.Client{
			ReadTimeout:  constants.AssistantTimeout,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/health")
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("assistant health check failed: status %d", resp.StatusCode())
	}

	var status HealthStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GenerateGuide asks the sidecar for an achievement guide. Slow: the
// sidecar runs a local model and may search the web first.
func (c *Client) GenerateGuide(ctx context.Context, game, achievement string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"game":        game,
		"achievement": achievement,
	})
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/generate_guide")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.do(ctx, req, resp); err != nil {
		return "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("assistant guide generation failed: status %d", resp.StatusCode())
	}

	var out struct {
		Guide string `json:"guide"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", err
	}
	return out.Guide, nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.Do(req, resp)
}
