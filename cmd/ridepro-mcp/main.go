// ridepro-mcp serves the workout library over MCP on stdio. With
// -server it proxies a remote RidePro instance through its REST API;
// otherwise it connects straight to the local database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/holographix/ridepro/internal/config"
	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/ingest/ergmrc"
	"github.com/holographix/ridepro/internal/ingest/fitfile"
	"github.com/holographix/ridepro/internal/ingest/zwo"
	"github.com/holographix/ridepro/internal/mcp"
	"github.com/holographix/ridepro/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "remote RidePro server URL; empty means local database mode")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ridepro-mcp", Version)
		return
	}

	// Logs go to stderr: stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	defaultFTP := 0
	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"))
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		defaultFTP = cfg.Ingest.DefaultFTP

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("local mode", "database", cfg.Database.Name)
	}

	registry := ingest.NewRegistry(
		zwo.NewParser(),
		ergmrc.NewParser(),
		fitfile.NewParser(defaultFTP),
	)

	s := mcp.New(ds, registry, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
