// Package api is the HTTP client for the moneywise persistence API. It
// implements the store's ports; all amounts travel as integer cents.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moneywise/internal/core"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL (e.g. "http://localhost:8082").
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

// ListTransactions implements store.TransactionAPI.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetTransaction fetches one record by id. Unknown ids fail with
// core.ErrNotFound.
func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var t core.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, &t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// CreateTransaction implements store.TransactionAPI.
func (c *Client) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	var created core.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", draft, &created); err != nil {
		return core.Transaction{}, err
	}
	return created, nil
}

// UpdateTransaction implements store.TransactionAPI.
func (c *Client) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction
	if err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), patch, &updated); err != nil {
		return core.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction implements store.TransactionAPI. A 404 counts as
// success: deleting twice is not an error worth distinguishing.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

// ListCategories implements store.CategoryAPI.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var cats []core.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory implements store.CategoryAPI.
func (c *Client) CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	var created core.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", draft, &created); err != nil {
		return core.Category{}, err
	}
	return created, nil
}

// do performs one round trip, encoding body as JSON when non-nil and
// decoding a 2xx response into out. A 404 maps to core.ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: status 404: %w", method, path, core.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, errorBody(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorBody extracts the server's error message, falling back to raw text.
func errorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
