// Package pandoc calls a Pandoc conversion server over HTTP.
package pandoc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-builder/internal/converter"
)

const (
	defaultTimeout = 30 * time.Second
	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 32 << 20
	errorBodyLimit  = 512
)

// Client implements converter.Converter against a Pandoc server that takes
// {"text", "to", "files": {"referenceDoc"}} and answers with the raw document.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. A non-positive timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("PANDOC_URL is required for the pandoc converter")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type convertRequest struct {
	Text  string `json:"text"`
	To    string `json:"to"`
	Files *files `json:"files,omitempty"`
}

type files struct {
	ReferenceDoc string `json:"referenceDoc,omitempty"`
}

// Convert posts the markdown and returns the converted document bytes.
func (c *Client) Convert(ctx context.Context, req converter.Request) ([]byte, error) {
	format := req.Format
	if format == "" {
		format = converter.FormatDOCX
	}
	body := convertRequest{Text: req.Markdown, To: format}
	if len(req.ReferenceDoc) > 0 {
		body.Files = &files{ReferenceDoc: base64.StdEncoding.EncodeToString(req.ReferenceDoc)}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("pandoc request timeout: %w", err)
		}
		return nil, fmt.Errorf("pandoc request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("pandoc response read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &converter.StatusError{Code: resp.StatusCode, Body: truncate(string(data), errorBodyLimit)}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("pandoc response empty")
	}
	return data, nil
}

// Ping checks the server's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &converter.StatusError{Code: resp.StatusCode}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ converter.Converter = (*Client)(nil)
