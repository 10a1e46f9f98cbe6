package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/metrics"
	"github.com/holographix/ridepro/internal/models"
	"github.com/holographix/ridepro/internal/storage"
)

// maxUploadBytes bounds workout file uploads. Structured workout files
// are tiny; anything bigger is not one.
const maxUploadBytes = 4 << 20

// handleImport accepts one workout file, either as a multipart "file"
// part or as a raw body with a filename query parameter, and runs it
// through the ingest pipeline.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename required"})
		return
	}
	if !s.ingest.Registry().Supports(filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{
			"error": "unsupported format: " + filename,
		})
		return
	}

	result, err := s.ingest.Ingest(r.Context(), filename, data, userIDFromContext(r))
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("import failed", "file", filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func readUpload(r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	// Only multipart bodies go through the form machinery; ParseForm
	// would otherwise consume a form-encoded body before the raw read.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", nil, fmt.Errorf("invalid multipart body: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, errors.New("multipart request needs a \"file\" part")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	return r.URL.Query().Get("filename"), data, nil
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Sport:     r.URL.Query().Get("sport"),
		Intensity: r.URL.Query().Get("intensity"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}

	workouts, err := s.db.ListWorkouts(r.Context(), userIDFromContext(r), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.ConvertedWorkout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkoutBySlug(w http.ResponseWriter, r *http.Request) {
	workout, err := s.db.GetWorkoutBySlug(r.Context(), chi.URLParam(r, "slug"), userIDFromContext(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// handleWorkoutMetrics recomputes training-load metrics from the
// archived segment list, so stored numbers can be audited against the
// estimator at any time.
func (s *Server) handleWorkoutMetrics(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.workoutFromPath(w, r)
	if !ok {
		return
	}

	var segments []models.Segment
	if err := json.Unmarshal(workout.RawJSON, &segments); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt segment archive: " + err.Error()})
		return
	}

	est := metrics.ForWorkout(&models.ParsedWorkout{
		Segments:      segments,
		TotalDuration: workout.DurationSeconds,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"workout_id": workout.ID,
		"stored": map[string]any{
			"tss_planned": workout.TSSPlanned,
			"if_planned":  workout.IFPlanned,
			"intensity":   workout.Intensity,
		},
		"recomputed": est,
		"segments":   segments,
	})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported_extensions": ingest.SupportedExtensions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetLibraryStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// workoutFromPath loads the workout named by the {id} URL parameter,
// writing the error response itself when that fails.
func (s *Server) workoutFromPath(w http.ResponseWriter, r *http.Request) (*models.ConvertedWorkout, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	workout, err := s.db.GetWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return workout, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
