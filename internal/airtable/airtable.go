package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL = "https://api.airtable.com/v0"
	// Max value for list requests per page.
	pageSize = "100"
	// Airtable allows 5 requests per second per base.
	defaultRequestsPerSecond = 5
)

type Client struct {
	token      string
	baseID     string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	APIURL     string
}

// New returns a client bound to a single base. A non-positive rps falls back to the Airtable per-base limit.
func New(logger *zap.Logger, token, baseID string, rps float64) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &Client{
		token:   token,
		baseID:  baseID,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		APIURL:  apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List returns every record of the table matching formula. An empty formula lists the whole table.
func (c *Client) List(ctx context.Context, table, formula string) ([]Record, error) {
	q := url.Values{}
	q.Set("pageSize", pageSize)
	if strings.TrimSpace(formula) != "" {
		q.Set("filterByFormula", formula)
	}

	records, err := c.listAll(ctx, c.tableURL(table), q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	return records, nil
}

func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	var record Record
	if err := c.sendJSON(ctx, http.MethodPost, c.tableURL(table), writeRequest{Fields: fields, Typecast: true}, &record); err != nil {
		return nil, fmt.Errorf("create in %s: %w", table, err)
	}

	return &record, nil
}

// Update patches only the given fields of the record.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	var record Record
	if err := c.sendJSON(ctx, http.MethodPatch, c.recordURL(table, id), writeRequest{Fields: fields, Typecast: true}, &record); err != nil {
		return nil, fmt.Errorf("update %s in %s: %w", id, table, err)
	}

	return &record, nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	var resp deleteResponse
	if err := c.sendJSON(ctx, http.MethodDelete, c.recordURL(table, id), nil, &resp); err != nil {
		return fmt.Errorf("delete %s in %s: %w", id, table, err)
	}

	if !resp.Deleted {
		return fmt.Errorf("delete %s in %s: record was not deleted", id, table)
	}

	return nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.APIURL, "/"), url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) recordURL(table, id string) string {
	return fmt.Sprintf("%s/%s", c.tableURL(table), url.PathEscape(id))
}
