// Package api is the device-side client of the authoritative log API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"nutrilog/common"
	"nutrilog/models"
	"nutrilog/services"
)

// Remote is what the sync coordinator needs from the server. The HTTP
// implementation below is the production one; tests substitute fakes.
type Remote interface {
	CreateEntry(ctx context.Context, draft services.EntryDraft) (*models.FoodLogEntry, error)
	UpdateEntry(ctx context.Context, id string, patch services.EntryPatch) (*models.FoodLogEntry, error)
	DeleteEntry(ctx context.Context, id string, expected *uint64) error
	DayEntries(ctx context.Context, date string) ([]models.FoodLogEntry, error)
	DaySummary(ctx context.Context, date string) (*services.DaySummary, error)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	detail := payload.Error
	if detail == "" {
		detail = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthenticated, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, detail)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrConflict, detail)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", common.ErrUpstreamUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", common.ErrInternal, detail)
	}
}

func (c *Client) CreateEntry(ctx context.Context, draft services.EntryDraft) (*models.FoodLogEntry, error) {
	var entry models.FoodLogEntry
	if err := c.do(ctx, http.MethodPost, "/api/entries", draft, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id string, patch services.EntryPatch) (*models.FoodLogEntry, error) {
	var entry models.FoodLogEntry
	if err := c.do(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(id), patch, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string, expected *uint64) error {
	path := "/api/entries/" + url.PathEscape(id)
	if expected != nil {
		path += fmt.Sprintf("?expected_counter=%d", *expected)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// DayEntries walks every page for the date. The server clamps page size,
// so a single request is not guaranteed to hold the whole day; the mirror
// must never be filled from a truncated list.
func (c *Client) DayEntries(ctx context.Context, date string) ([]models.FoodLogEntry, error) {
	var entries []models.FoodLogEntry
	offset := 0
	for {
		var page services.EntryPage
		path := fmt.Sprintf("/api/entries?date=%s&limit=100&offset=%d", url.QueryEscape(date), offset)
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page.Entries...)
		if !page.HasMore || len(page.Entries) == 0 {
			return entries, nil
		}
		offset += len(page.Entries)
	}
}

func (c *Client) DaySummary(ctx context.Context, date string) (*services.DaySummary, error) {
	var summary services.DaySummary
	if err := c.do(ctx, http.MethodGet, "/api/summary?date="+url.QueryEscape(date), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
