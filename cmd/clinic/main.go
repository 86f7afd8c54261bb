// Clinic runs "Get to the clinic", a text adventure about getting a medical
// certificate, in a terminal or as a Discord bot.
// Usage: clinic [--version] [--config <file>] [--plain] [--script <file>] [--trace]
//
//	[--bot] [--player <id>] [--name <name>] [<game_dir_or_yaml>]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/bot"
	"github.com/nathoo/clinicquest/cli"
	"github.com/nathoo/clinicquest/config"
	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/engine/world"
	"github.com/nathoo/clinicquest/loader"
	"github.com/nathoo/clinicquest/persist"
	"github.com/nathoo/clinicquest/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: clinic [--version] [--config <file>] [--plain] [--script <file>] [--trace] [--bot] [--player <id>] [--name <name>] [<game_dir_or_yaml>]\n"

type flags struct {
	configFile string
	scriptFile string
	gamePath   string
	playerID   string
	playerName string
	plain      bool
	trace      bool
	bot        bool
}

func main() {
	f, ok := parseArgs(os.Args[1:])
	if !ok {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (flags, bool) {
	f := flags{playerID: "local", playerName: "Vasya"}
	value := func(i *int, name string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("clinic %s (commit %s, built %s)\n", version, commit, date)
			return f, false
		case "--help", "-h":
			fmt.Print(usage)
			return f, false
		case "--config":
			f.configFile = value(&i, "--config")
		case "--plain":
			f.plain = true
		case "--trace":
			f.trace = true
		case "--bot":
			f.bot = true
		case "--script":
			f.scriptFile = value(&i, "--script")
		case "--player":
			f.playerID = value(&i, "--player")
		case "--name":
			f.playerName = value(&i, "--name")
		default:
			if strings.HasPrefix(args[i], "--") {
				fmt.Fprintf(os.Stderr, "unknown flag %s\n%s", args[i], usage)
				os.Exit(1)
			}
			if f.gamePath == "" {
				f.gamePath = args[i]
			}
		}
	}
	return f, true
}

func run(ctx context.Context, f flags) error {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return err
	}
	if f.gamePath != "" {
		cfg.Game.Dir = f.gamePath
	}

	useTUI := !f.bot && f.scriptFile == "" && !f.plain && isTerminal()

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if useTUI && cfg.Log.File == "" {
		// stderr belongs to the terminal UI.
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck

	w, err := loadWorld(cfg, logger)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	st, closeStore, err := openStore(cfg, w, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	eng := engine.New(w, st, logger, engine.WithSeed(cfg.Game.Seed))

	if f.bot {
		b, err := bot.New(bot.Config{Token: cfg.Discord.Token, Prefix: cfg.Discord.Prefix}, eng, logger)
		if err != nil {
			return err
		}
		logger.Info("starting discord bot", zap.String("game", w.Game.Title))
		return b.Run(ctx)
	}

	// Script mode: open file, force plain, echo commands.
	if f.scriptFile != "" {
		in, err := os.Open(f.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer in.Close()
		return runPlain(ctx, eng, cfg, f, in)
	}

	if useTUI {
		return tui.Run(ctx, eng, f.playerID, f.playerName)
	}
	return runPlain(ctx, eng, cfg, f, nil)
}

func runPlain(ctx context.Context, eng *engine.Engine, cfg *config.Config, f flags, script *os.File) error {
	game := eng.World().Game
	fmt.Printf("%s v%s by %s\n\n", game.Title, game.Version, game.Author)
	c := cli.New(eng, f.playerID, f.playerName)
	c.SaveDir = cfg.Save.Dir
	c.Trace = f.trace
	if script != nil {
		c.In = script
		c.EchoInput = true
	}
	return c.Run(ctx)
}

// loadWorld loads Lua content from a directory or YAML content from a
// .yaml file, then applies the configured rule overrides.
func loadWorld(cfg *config.Config, logger *zap.Logger) (*world.World, error) {
	var (
		w   *world.World
		err error
	)
	path := cfg.Game.Dir
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		w, err = loader.LoadYAML(path, loader.WithLogger(logger))
	} else {
		w, err = loader.Load(path, loader.WithLogger(logger))
	}
	if err != nil {
		return nil, err
	}

	rules := cfg.Game.Rules(w.Rules())
	if rules != w.Rules() {
		w.Game.Rules = rules
		if err := w.Check(); err != nil {
			return nil, fmt.Errorf("configured rules: %w", err)
		}
	}
	return w, nil
}

func openStore(cfg *config.Config, w *world.World, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Database.Mode != config.ModeSQLite {
		return store.NewMemStore(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	db, err := persist.Open(cfg.Database.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	s, err := persist.New(db, w, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Info("using sqlite store", zap.String("path", cfg.Database.SQLitePath))
	return s, closeDB, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
