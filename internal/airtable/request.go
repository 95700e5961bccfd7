package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const contentType = "application/json"

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast,omitempty"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// listAll makes GET requests to the table and returns records from all pages.
func (c *Client) listAll(ctx context.Context, endpoint string, q url.Values) ([]Record, error) {
	var records []Record

	for page := 1; ; page++ {
		var response listResponse
		if err := c.getJSON(ctx, endpoint, q, &response); err != nil {
			return nil, err
		}

		records = append(records, response.Records...)

		if response.Offset == "" {
			return records, nil
		}

		c.logger.Debug("additional request needed",
			zap.Int("page", page+1),
			zap.Int("records_so_far", len(records)),
		)
		q.Set("offset", response.Offset)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, target)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", contentType)

	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp, data)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
