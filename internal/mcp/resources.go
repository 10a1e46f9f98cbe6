package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/storage"
)

func (h *handlers) librarySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetLibraryStats(ctx, uid)
	if err != nil {
		return nil, err
	}

	recent, err := h.ds.ListWorkouts(ctx, uid, storage.ListOptions{Limit: 10})
	if err != nil {
		h.log.Warn("library_summary: recent workouts failed", "error", err)
	}

	data, err := json.Marshal(map[string]any{
		"stats":  stats,
		"recent": recent,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) supportedFormats(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(map[string]any{
		"supported_extensions": ingest.SupportedExtensions,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
