package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tailored-agentic-units/relay/game"
	"github.com/tailored-agentic-units/relay/gemini"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/relay"
	"github.com/tailored-agentic-units/relay/session"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to relay config JSON file")
		rosterFile   = flag.String("roster", "", "Path to character roster JSON (overrides config)")
		systemPrompt = flag.String("system-prompt", "", "Path to system prompt file (overrides config)")
		sessionID    = flag.String("session", "local", "Initial session id")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := relay.DefaultConfig()
	if *configFile != "" {
		loaded, err := relay.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	apiKey, err := cfg.ApplyEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GOOGLE_API_KEY is not set")
		os.Exit(1)
	}

	if *rosterFile != "" {
		cfg.Game.RosterPath = *rosterFile
	}
	if *systemPrompt != "" {
		cfg.SystemPromptPath = *systemPrompt
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel, *verbose),
	}))
	observer := observability.NewSlogObserver(logger)

	store := session.New(&cfg.Session)
	gateway := gemini.New(apiKey, &cfg.Gemini, store, gemini.WithObserver(observer))

	fight, err := game.New(&cfg.Game)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}

	prompt, err := cfg.SystemPrompt()
	if err != nil {
		logger.Warn("system prompt unavailable, continuing without one",
			"path", cfg.SystemPromptPath, "error", err)
	}

	coordinator := relay.New(gateway, relay.GameDispatch(fight, cfg.Game, observer),
		relay.WithStore(store),
		relay.WithSystemPrompt(prompt),
		relay.WithTools(game.Tools()),
		relay.WithObserver(observer),
	)

	replier := &programReplier{}
	p := tea.NewProgram(newModel(coordinator, fight, replier, *sessionID), tea.WithAltScreen())
	replier.program = p

	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI failed: %v", err)
	}
}

func logLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
