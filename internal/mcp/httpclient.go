package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/holographix/ridepro/internal/models"
	"github.com/holographix/ridepro/internal/storage"
)

// HTTPClient implements DataSource by calling the RidePro REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the library lives on the remote server (accessed over Tailscale).
// The server resolves the caller's identity itself, so the userID
// arguments are ignored here.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _ int, opts storage.ListOptions) ([]models.ConvertedWorkout, error) {
	params := url.Values{}
	if opts.Sport != "" {
		params.Set("sport", opts.Sport)
	}
	if opts.Intensity != "" {
		params.Set("intensity", opts.Intensity)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.ConvertedWorkout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID, _ int) (*models.ConvertedWorkout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var w models.ConvertedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) GetWorkoutBySlug(ctx context.Context, slug string, _ int) (*models.ConvertedWorkout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/slug/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}

	var w models.ConvertedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) GetLibraryStats(ctx context.Context, _ int) (*storage.LibraryStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.LibraryStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode library stats: %w", err)
	}
	return &stats, nil
}
