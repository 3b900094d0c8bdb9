// Package polymarket is the read-only client for the Polymarket Gamma API,
// which provides market discovery, metadata, and indicative pricing.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// GammaClient is the REST client for the Polymarket Gamma API.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarkets returns one page of active, still-open markets.
func (g *GammaClient) GetMarkets(ctx context.Context, limit, offset int) ([]Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("active", "true")
	params.Set("closed", "false")

	path := "/markets?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	return markets, nil
}

// GetMarket returns a single market by its ID.
func (g *GammaClient) GetMarket(ctx context.Context, id string) (Market, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(id))

	body, err := g.doGet(ctx, path)
	if err != nil {
		return Market{}, fmt.Errorf("polymarket/gamma: get market %s: %w", id, err)
	}

	var market Market
	if err := json.Unmarshal(body, &market); err != nil {
		return Market{}, fmt.Errorf("polymarket/gamma: decode market: %w", err)
	}

	return market, nil
}

// FetchAll pages through active markets until maxPages is exhausted or a
// short page signals the end of the listing. It is the snapshot entry point
// used by the scanner.
func (g *GammaClient) FetchAll(ctx context.Context, pageLimit, maxPages int) ([]Market, error) {
	var all []Market
	for page := 0; page < maxPages; page++ {
		markets, err := g.GetMarkets(ctx, pageLimit, page*pageLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, markets...)
		if len(markets) < pageLimit {
			break
		}
	}
	return all, nil
}

// doGet performs a GET request against the Gamma API and returns the raw
// response body.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body[:min(len(body), 256)]))
	}

	return body, nil
}
