// Command kingdomd serves the Keystroke Kingdom economy game over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/keystroke-kingdom/internal/advisor"
	"github.com/talgya/keystroke-kingdom/internal/api"
	"github.com/talgya/keystroke-kingdom/internal/config"
	"github.com/talgya/keystroke-kingdom/internal/entropy"
	"github.com/talgya/keystroke-kingdom/internal/persistence"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("KINGDOM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Keystroke Kingdom — economy simulation server")

	dbPath := os.Getenv("KINGDOM_DB")
	if dbPath == "" {
		dbPath = "data/kingdom.db"
	}
	port := 8080
	if v := os.Getenv("KINGDOM_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		} else {
			slog.Warn("invalid KINGDOM_PORT, using default", "value", v)
		}
	}

	// ── Balance overrides ─────────────────────────────────────────────
	balancePath := os.Getenv("KINGDOM_BALANCE")
	if balancePath == "" {
		balancePath = "balance.yaml"
	}
	balance, err := config.LoadBalance(balancePath)
	if err != nil {
		slog.Error("balance file unreadable", "path", balancePath, "error", err)
		os.Exit(1)
	}
	if balance != nil {
		slog.Info("balance overrides loaded", "path", balancePath)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Advisor ───────────────────────────────────────────────────────
	var adv advisor.Advisor = advisor.Canned{}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		adv = advisor.Hosted{Client: advisor.NewClient(key)}
		slog.Info("hosted advisor enabled")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — advisor uses canned responses")
	}

	// ── Entropy ───────────────────────────────────────────────────────
	var src entropy.Source
	if pool := entropy.NewPool(os.Getenv("RANDOM_ORG_KEY")); pool != nil {
		src = pool
		slog.Info("random.org entropy pool enabled")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{
		DB:      db,
		Advisor: adv,
		Balance: balance,
		Entropy: src,
		Port:    port,
	}
	server.Start()

	fmt.Printf("Keystroke Kingdom listening on http://localhost:%d/api/v1\n", port)
	fmt.Println("Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	server.FlushSaves()
	slog.Info("live games saved")
}
