// Package catalog talks to the external product catalog and resolves
// free-text gift phrases to concrete products.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"santa-agent-service/internal/domain"
)

// Client is a thin HTTP client for a dummyjson-style product API. Every call
// carries its own timeout so one slow endpoint cannot stall the whole tiered
// resolution.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type productsResponse struct {
	Products []domain.CatalogProduct `json:"products"`
}

// Search queries the free-text search endpoint.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]domain.CatalogProduct, error) {
	query := url.Values{"q": {term}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.fetch(ctx, "/products/search?"+query.Encode())
}

// Category lists products of one category.
func (c *Client) Category(ctx context.Context, category string, limit int) ([]domain.CatalogProduct, error) {
	path := "/products/category/" + url.PathEscape(category)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return c.fetch(ctx, path)
}

// List fetches a general product listing.
func (c *Client) List(ctx context.Context, limit int) ([]domain.CatalogProduct, error) {
	return c.fetch(ctx, "/products?limit="+strconv.Itoa(limit))
}

func (c *Client) fetch(ctx context.Context, path string) ([]domain.CatalogProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
	}

	var payload productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return payload.Products, nil
}
