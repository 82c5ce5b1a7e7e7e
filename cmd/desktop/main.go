// desktop plays the game in a raylib window, stepping it from the frame loop.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"autosnake/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the game config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "desktop: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (game.Config, error) {
	cfg, err := game.FromYaml(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no config file, using defaults", "path", path)
		return game.DefaultConfig(), nil
	}
	if err != nil {
		return game.Config{}, err
	}
	return *cfg, nil
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	g, err := game.New(cfg)
	if err != nil {
		return err
	}

	rl.InitWindow(1280, 800, "autosnake")
	rl.SetWindowState(rl.FlagWindowResizable)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	r := &renderer{}
	snap := g.Snapshot()
	lastStep := time.Now()
	var finishedAt time.Time

	for !rl.WindowShouldClose() {
		switch {
		case rl.IsKeyPressed(rl.KeyQ):
			return nil
		case rl.IsKeyPressed(rl.KeyP):
			g.TogglePause()
			snap = g.Snapshot()
		case rl.IsKeyPressed(rl.KeyA):
			g.SetAlgorithm(g.Algorithm().Toggle())
			snap = g.Snapshot()
		case rl.IsKeyPressed(rl.KeyR):
			g.Reset()
			snap = g.Snapshot()
		}

		if time.Since(lastStep) >= cfg.TickInterval {
			lastStep = time.Now()
			snap = g.Step()
			finishedAt = restart(g, cfg, snap, finishedAt)
		}

		r.draw(snap)
	}
	return nil
}

// restart replaces a finished game after the configured delay, and returns
// when the current game finished, or zero while it is running.
func restart(g *game.Game, cfg game.Config, snap game.Snapshot, finishedAt time.Time) time.Time {
	switch {
	case !snap.Outcome.Finished() || !cfg.RestartOnGameOver:
		return time.Time{}
	case finishedAt.IsZero():
		return time.Now()
	case time.Since(finishedAt) >= cfg.RestartDelay:
		slog.Info("restarting", "outcome", snap.Outcome, "length", len(snap.Snake), "search", snap.Algorithm)
		g.Reset()
		return time.Time{}
	}
	return finishedAt
}
