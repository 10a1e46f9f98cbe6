package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/ingest/ergmrc"
	"github.com/holographix/ridepro/internal/ingest/zwo"
)

const testAPIKey = "test-key"

// newTestServer builds a Server with real parsers and no database.
// Tests that would hit storage use the validation/error paths only.
func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := ingest.NewRegistry(zwo.NewParser(), ergmrc.NewParser())
	svc := ingest.NewService(registry, nil, log)
	return New(nil, svc, testAPIKey, log)
}

func doRequest(s *Server, method, target, apiKey string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestImportRequiresAPIKey(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodPost, "/api/v1/workouts/import?filename=a.zwo", "", strings.NewReader("x"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/workouts/import?filename=a.zwo", "wrong", strings.NewReader("x"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestImportMissingFilename(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodPost, "/api/v1/workouts/import", testAPIKey, strings.NewReader("x"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportUnsupportedExtension(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodPost, "/api/v1/workouts/import?filename=ride.gpx", testAPIKey, strings.NewReader("x"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

// TestImportInvalidContent: a recognized extension with unparseable
// content surfaces the typed invalid-input failure as a 400.
func TestImportInvalidContent(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodPost, "/api/v1/workouts/import?filename=broken.zwo",
		testAPIKey, strings.NewReader("<workout_file><name>x</name></workout_file>"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(resp["error"], "workout") {
		t.Errorf("error %q should name the missing workout element", resp["error"])
	}
}

// TestImportMultipartFilename: the filename comes from the multipart
// part, not a query parameter.
func TestImportMultipartFilename(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "ride.gpx")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("not a workout"))
	mw.Close()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts/import", &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	// .gpx is recognized nowhere, so the part's filename must have
	// been picked up for the 415 decision.
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

// TestImportFormEncodedContentType: a form-encoded content type is
// treated as a raw body, so the bytes reach the parser intact instead
// of being consumed by form parsing.
func TestImportFormEncodedContentType(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts/import?filename=broken.zwo",
		strings.NewReader("<workout_file><name>x</name></workout_file>"))
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	// The missing-element message proves the body was actually read;
	// an empty body would fail earlier with an XML EOF error.
	if !strings.Contains(resp["error"], "missing <workout> element") {
		t.Errorf("error %q should name the missing workout element", resp["error"])
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodGet, "/api/v1/formats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	got := resp["supported_extensions"]
	if len(got) != len(ingest.SupportedExtensions) {
		t.Errorf("extensions = %v", got)
	}
}

func TestGetWorkoutInvalidID(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodGet, "/api/v1/workouts/not-a-uuid", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMe(t *testing.T) {
	s := newTestServer()
	rec := doRequest(s, http.MethodGet, "/api/v1/me", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want local", info.Login)
	}
}
