package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/holographix/ridepro/internal/ingest"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// The registry powers the preview tool, which parses workout files
// without storing them.
func New(ds DataSource, registry *ingest.Registry, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RidePro", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RidePro structured workout library. Query stored cycling workouts, planned training load (TSS/IF), and library statistics, or preview a workout file without importing it. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, registry: registry, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolFindWorkoutsByIntensity, Handler: h.findWorkoutsByIntensity},
		server.ServerTool{Tool: toolGetLibraryStats, Handler: h.getLibraryStats},
		server.ServerTool{Tool: toolPreviewWorkoutFile, Handler: h.previewWorkoutFile},
	)

	s.AddResources(
		server.ServerResource{Resource: resLibrarySummary, Handler: h.librarySummary},
		server.ServerResource{Resource: resSupportedFormats, Handler: h.supportedFormats},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	registry *ingest.Registry
	log      *slog.Logger
}

// --- Resource definitions ---

var resLibrarySummary = mcp.NewResource(
	"ridepro://library_summary",
	"Library Summary",
	mcp.WithResourceDescription("Workout library totals by sport, intensity, and source format, plus the most recently imported workouts"),
	mcp.WithMIMEType("application/json"),
)

var resSupportedFormats = mcp.NewResource(
	"ridepro://supported_formats",
	"Supported Formats",
	mcp.WithResourceDescription("Workout file extensions the import pipeline understands"),
	mcp.WithMIMEType("application/json"),
)
