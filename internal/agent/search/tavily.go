// Package search retrieves base recipes from the web and flattens the
// provider payload into prompt-ready text.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/chef-innovativo/server/internal/agent/model"
	errx "github.com/chef-innovativo/server/internal/core/error"
)

const searchPath = "/search"

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

// TavilyClient calls the Tavily search API and returns its body untouched.
type TavilyClient struct {
	client *resty.Client
	cfg    model.SearchConfig
}

func NewTavilyClient(cfg model.SearchConfig) (*TavilyClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("search: TAVILY_API_KEY is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &TavilyClient{client: client, cfg: cfg}, nil
}

// Search posts the query and returns the raw response body.
func (c *TavilyClient) Search(ctx context.Context, query string) (json.RawMessage, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(tavilyRequest{
			Query:       query,
			SearchDepth: c.cfg.Depth,
			MaxResults:  c.cfg.MaxResults,
		}).
		Post(searchPath)
	if err != nil {
		return nil, errx.WrapSearch(fmt.Errorf("tavily: request failed: %w", err), 0)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return nil, errx.WrapSearch(fmt.Errorf("tavily: rate limit exceeded (status %d)", code), code)
	case code < 200 || code > 299:
		return nil, errx.WrapSearch(fmt.Errorf("tavily: status %d: %s", code, strings.TrimSpace(resp.String())), code)
	}

	return json.RawMessage(resp.Body()), nil
}
