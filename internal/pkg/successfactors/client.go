// Package successfactors talks to the SAP SuccessFactors OData v2 API for
// compensation records, permissions and employee data.
package successfactors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	pathCompensationData = "/odata/v2/CompensationData"
	pathUserPermission   = "/odata/v2/UserPermissionNav"
	pathUser             = "/odata/v2/User"
	pathEmployee         = "/odata/v2/Employee"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient wraps an already authenticated http.Client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// odataList is the OData v2 collection envelope.
type odataList[T any] struct {
	D struct {
		Results []T `json:"results"`
	} `json:"d"`
}

// odataEntity is the OData v2 single entity envelope.
type odataEntity[T any] struct {
	D T `json:"d"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("successfactors request failed",
			slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("successfactors returned an error",
			slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// filter builds an OData $filter joining field eq 'value' clauses with and.
// Empty values are skipped.
func filter(pairs ...string) string {
	clauses := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s eq %s", pairs[i], quote(pairs[i+1])))
	}
	return strings.Join(clauses, " and ")
}

func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func entityPath(path, key string) string {
	return fmt.Sprintf("%s(%s)", path, url.PathEscape(quote(key)))
}
