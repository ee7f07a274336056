package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/transit-dashboard/auth"
	"github.com/danielhkuo/transit-dashboard/cliparse"
	"github.com/danielhkuo/transit-dashboard/db"
	"github.com/danielhkuo/transit-dashboard/engine"
	"github.com/danielhkuo/transit-dashboard/handlers"
	"github.com/danielhkuo/transit-dashboard/middleware"
	"github.com/danielhkuo/transit-dashboard/router"
	"github.com/danielhkuo/transit-dashboard/session"
	"github.com/danielhkuo/transit-dashboard/upstream"
)

func main() {
	var err error

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	// Pick the data source
	var src handlers.Source
	switch cfg.Source {
	case cliparse.SourceSQL:
		dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		// Create schema (tables)
		if err := db.CreateSchema(dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)

		src = db.NewStore(dbConn, cfg.VoteNamespace)
	default:
		src = upstream.NewClient(nil, cfg.UpstreamURL, cfg.VoteNamespace)
		slog.Info("Using upstream API", "url", cfg.UpstreamURL)
	}

	slog.Debug("mapper admin key", "key", auth.GenerateAdminKey(auth.MapperScope, cfg.AdminKeySalt))

	sessions := session.NewManager(handlers.EngineSources(src), cfg.MaxSessions, cfg.SessionTTL,
		engine.WithAcquireTimeout(cfg.AcquireTimeout))

	// Create router
	mux := router.NewRouter(src, sessions, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// let background vote requests finish
	sessions.Close()
}

// setupLogging uses readable text on a terminal and JSON otherwise
func setupLogging(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
