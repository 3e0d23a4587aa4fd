// Package search implements the HTTP client for a txtai-style semantic
// search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EmerJK/emertxthn/internal/domain"
)

// ResultLimit is the fixed number of passages requested per query.
const ResultLimit = 5

// ErrUnexpectedFormat is returned when the response body matches none of
// the accepted shapes. Callers degrade to an empty result.
var ErrUnexpectedFormat = errors.New("unexpected search response format")

type searchRequest struct {
	Query     string   `json:"query"`
	Threshold float64  `json:"threshold"`
	Limit     int      `json:"limit"`
	Chunks    []string `json:"chunks"`
}

// Client issues search queries over HTTP.
type Client struct {
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a search client with the given request timeout.
func NewClient(timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Search posts the query to apiURL and returns the joined text of all
// passages scoring at or above threshold. An empty apiURL or query skips
// the request entirely and returns "".
func (c *Client) Search(ctx context.Context, apiURL, query string, threshold float64, chunks []string) (string, error) {
	if apiURL == "" {
		c.log.Debug("no search api url configured, skipping query")
		return "", nil
	}
	if strings.TrimSpace(query) == "" {
		return "", nil
	}

	if chunks == nil {
		chunks = []string{}
	}

	payload, err := json.Marshal(searchRequest{
		Query:     query,
		Threshold: threshold,
		Limit:     ResultLimit,
		Chunks:    chunks,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("search api returned status %d: %s", resp.StatusCode, truncate(string(body), 400))
	}

	return decodeResults(body, threshold)
}

// decodeResults normalizes the three accepted response shapes: a bare array
// of passages, an object with a results field, or a single passage object.
// Anything else fails closed with ErrUnexpectedFormat.
func decodeResults(data []byte, threshold float64) (string, error) {
	var list []domain.Passage
	if err := json.Unmarshal(data, &list); err == nil {
		return joinPassages(list, threshold), nil
	}

	var probe struct {
		Results []domain.Passage `json:"results"`
		Text    *string          `json:"text"`
		Score   *float64         `json:"score"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		if probe.Results != nil {
			return joinPassages(probe.Results, threshold), nil
		}
		if probe.Text != nil && probe.Score != nil {
			return joinPassages([]domain.Passage{{Text: *probe.Text, Score: *probe.Score}}, threshold), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnexpectedFormat, truncate(string(data), 200))
}

// joinPassages keeps passages scoring at or above threshold, in their
// original order, joined by a blank line.
func joinPassages(passages []domain.Passage, threshold float64) string {
	var texts []string
	for _, p := range passages {
		if p.Score < threshold {
			continue
		}
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
