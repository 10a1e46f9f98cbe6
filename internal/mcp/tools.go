package mcp

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/holographix/ridepro/internal/metrics"
	"github.com/holographix/ridepro/internal/models"
	"github.com/holographix/ridepro/internal/storage"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List stored workouts, newest first. Each entry includes duration, planned TSS/IF, intensity category, and the structured step tree."),
	mcp.WithString("sport", mcp.Description("Filter by sport (e.g. 'bike', 'run')")),
	mcp.WithString("intensity", mcp.Description("Filter by intensity category"), mcp.Enum("EASY", "MODERATE", "HARD", "VERY_HARD")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 100, capped at 500.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Fetch one workout by UUID or slug, including its full structure and the archived segment list."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Workout UUID or slug (e.g. 'sweet-spot-base-3f2a91bc')")),
)

var toolFindWorkoutsByIntensity = mcp.NewTool("find_workouts_by_intensity",
	mcp.WithDescription("Find stored workouts in one planned-intensity category, newest first."),
	mcp.WithString("intensity", mcp.Required(), mcp.Description("Intensity category"), mcp.Enum("EASY", "MODERATE", "HARD", "VERY_HARD")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 100.")),
)

var toolGetLibraryStats = mcp.NewTool("get_library_stats",
	mcp.WithDescription("Aggregate library statistics: workout counts and total planned TSS, broken down by sport, intensity, and source format."),
)

var toolPreviewWorkoutFile = mcp.NewTool("preview_workout_file",
	mcp.WithDescription("Parse a workout file (.zwo, .erg, .mrc, .fit) and return its segment timeline and estimated training load without importing it."),
	mcp.WithString("filename", mcp.Required(), mcp.Description("File name; the extension selects the parser")),
	mcp.WithString("content", mcp.Required(), mcp.Description("File content. Text for ZWO/ERG/MRC, base64 for FIT.")),
	mcp.WithString("encoding", mcp.Description("Content encoding. Defaults to 'text'."), mcp.Enum("text", "base64")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := storage.ListOptions{
		Sport:     req.GetString("sport", ""),
		Intensity: req.GetString("intensity", ""),
		Limit:     req.GetInt("limit", 0),
	}
	uid := UserIDFromContext(ctx)

	workouts, err := h.ds.ListWorkouts(ctx, uid, opts)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	var w *models.ConvertedWorkout
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		w, err = h.ds.GetWorkout(ctx, id, uid)
	} else {
		w, err = h.ds.GetWorkoutBySlug(ctx, ref, uid)
	}
	if err != nil {
		h.log.Error("mcp get_workout", "ref", ref, "error", err)
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) findWorkoutsByIntensity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intensity, err := req.RequireString("intensity")
	if err != nil {
		return mcp.NewToolResultError("intensity parameter is required"), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx), storage.ListOptions{
		Intensity: intensity,
		Limit:     req.GetInt("limit", 0),
	})
	if err != nil {
		h.log.Error("mcp find_workouts_by_intensity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLibraryStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetLibraryStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_library_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewWorkoutFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError("filename parameter is required"), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content parameter is required"), nil
	}

	data := []byte(content)
	if req.GetString("encoding", "text") == "base64" {
		data, err = base64.StdEncoding.DecodeString(content)
		if err != nil {
			return mcp.NewToolResultError("invalid base64 content: " + err.Error()), nil
		}
	}

	if !h.registry.Supports(filename) {
		return mcp.NewToolResultError("unsupported format: " + filename), nil
	}
	parsed, err := h.registry.Parse(filename, data)
	if err != nil {
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	est := metrics.ForWorkout(parsed)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"name":          parsed.Name,
		"sport":         parsed.Sport,
		"source_format": parsed.SourceFormat,
		"duration_sec":  parsed.TotalDuration,
		"segment_count": len(parsed.Segments),
		"segments":      parsed.Segments,
		"metrics":       est,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
