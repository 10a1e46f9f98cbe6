package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ImportResult is the server's response to a successful import.
type ImportResult struct {
	WorkoutID  string  `json:"workout_id"`
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	TSSPlanned int     `json:"tss_planned"`
	IFPlanned  float64 `json:"if_planned"`
}

// ErrRejected marks uploads the server refused as invalid. Retrying
// the same file cannot succeed, so callers skip it and move on.
type ErrRejected struct {
	Status int
	Body   string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("server rejected file (status %d): %s", e.Status, e.Body)
}

// Client sends workout files to the RidePro server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the RidePro server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendFile POSTs one workout file to the import endpoint as a
// multipart upload. Retries up to 3 times with exponential backoff on
// transient failures; 4xx responses are returned as *ErrRejected
// without retrying.
func (c *Client) SendFile(filename string, data []byte) (*ImportResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost,
			c.serverURL+"/api/v1/workouts/import", bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusCreated:
			var result ImportResult
			if err := json.Unmarshal(respBody, &result); err != nil {
				return nil, fmt.Errorf("decoding import response: %w", err)
			}
			return &result, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &ErrRejected{Status: resp.StatusCode, Body: string(respBody)}
		default:
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, respBody)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
