// Parley runs NPC conversations loaded from Lua content from the terminal.
// Usage: parley [--version] [--script <file>] [--trace] [--player <name>] [content_directory]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nathoo/parley/cli"
	"github.com/nathoo/parley/config"
	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/events"
	"github.com/nathoo/parley/loader"
	"github.com/nathoo/parley/observability"
	"github.com/nathoo/parley/store"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	trace := false
	var scriptFile, playerName string
	contentDir := cfg.ContentDir

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("parley %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--trace":
			trace = true
		case "--script", "--player":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			if args[i] == "--script" {
				scriptFile = args[i+1]
			} else {
				playerName = args[i+1]
			}
			i++
		default:
			contentDir = args[i]
		}
	}

	if err := run(cfg, contentDir, scriptFile, playerName, trace); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, contentDir, scriptFile, playerName string, trace bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	content, err := loader.Load(contentDir)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	defer st.Close()

	pub := events.NewNoopPublisher()
	if cfg.NATSURL != "" {
		pub, err = events.NewPublisher(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
	}
	defer pub.Close()

	clock := cli.NewClock(nil)
	w := engine.New(engine.Options{
		Logger:      logger,
		Saver:       st,
		Now:         clock.Now,
		Seed:        cfg.Seed,
		IdleTimeout: cfg.IdleTimeout,
	})
	w.Bus.On(events.All, events.Publish(pub, logger))
	if err := loader.Install(content, w); err != nil {
		return fmt.Errorf("installing content: %w", err)
	}
	logger.Info().Str("content", contentDir).Str("store", cfg.Store).
		Int("npcs", len(content.NPCs)).Int("quests", len(content.Quests)).Msg("world ready")

	c := cli.New(w, st, clock)
	c.Title = content.Title
	c.Trace = trace
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	if playerName != "" {
		c.SwitchPlayer(ctx, playerName)
	}
	c.Run(ctx)
	return nil
}
