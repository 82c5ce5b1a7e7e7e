/*
Autosnake runs a snake that plays itself. Each tick an autopilot searches the
board (A* or Dijkstra, switchable at runtime) for a safe route to the food,
stalls along the longest route to its own tail when no meal is safe, and
draws its reasoning: the cells the search expanded and the routes it chose.
The game is served as a live web page with a small control API and metrics,
or drawn in the terminal.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"autosnake/game"
	"autosnake/grid_world"
	"autosnake/metrics"
	"autosnake/server"
	"autosnake/terminal"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const (
	viewWeb = "web"
	viewTUI = "tui"
)

// Every debugEvery ticks the debug console prints the board.
const debugEvery = 10

type options struct {
	configPath string
	debug      bool
	view       string
	addr       string
}

func parseFlags() options {
	configPath := flag.String("config", "./config.yaml", "path to the game config")
	dbg := flag.Bool("debug", false, "debug mode: small board, debug logs, board printed to the console")
	view := flag.String("view", viewWeb, "how to show the game: web or tui")
	host := flag.String("host", "", "The host ip")
	port := flag.String("port", "8080", "The host port")
	flag.Parse()

	return options{
		configPath: *configPath,
		debug:      *dbg,
		view:       *view,
		addr:       *host + ":" + *port,
	}
}

// setupLogging installs the default logger. The terminal viewer owns the
// screen, so in that mode logs are dropped.
func setupLogging(opts options, w io.Writer) {
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	if opts.view == viewTUI {
		w = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file, falling back to the defaults when there
// is none. Debug mode swaps in the small board.
func loadConfig(opts options) (game.Config, error) {
	cfg := game.DefaultConfig()
	loaded, err := game.FromYaml(opts.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no config file, using defaults", "path", opts.configPath)
	case err != nil:
		return cfg, err
	default:
		cfg = *loaded
	}

	if opts.debug {
		cfg.Grid = game.GridConfig{Rows: grid_world.DebugBoard.Rows, Columns: grid_world.DebugBoard.Columns}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("debug board: %w", err)
		}
	}
	return cfg, nil
}

// fanOut hands every snapshot to each publisher in turn.
func fanOut(publishers ...game.PublishFunc) game.PublishFunc {
	return func(ctx context.Context, snap game.Snapshot) {
		for _, publish := range publishers {
			publish(ctx, snap)
		}
	}
}

// printBoard shows the board on w every debugEvery ticks and when a game ends.
func printBoard(w io.Writer) game.PublishFunc {
	return func(_ context.Context, snap game.Snapshot) {
		if snap.Tick%debugEvery != 0 && !snap.Outcome.Finished() {
			return
		}
		fmt.Fprintf(w, "game %s tick %d %s length %d\n", snap.GameID, snap.Tick, snap.Outcome, len(snap.Snake))
		grid_world.NewBoard(snap.Grid, snap.Snake, snap.Food, snap.HasFood, snap.Decision).Show(w)
	}
}

func runApp(ctx context.Context, opts options) (err error) {
	var cfg game.Config
	if cfg, err = loadConfig(opts); err != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var g *game.Game
	if g, err = game.New(cfg, game.WithRecorder(metrics.NewRecorder(reg))); err != nil {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	var publishers []game.PublishFunc

	switch opts.view {
	case viewWeb:
		srv := server.NewServer(opts.addr, g, reg)
		publishers = append(publishers, srv.Publish)
		if opts.debug {
			publishers = append(publishers, printBoard(os.Stdout))
		}
		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
	case viewTUI:
		var screen tcell.Screen
		if screen, err = tcell.NewScreen(); err != nil {
			return
		}
		var viewer *terminal.Viewer
		if viewer, err = terminal.NewViewer(screen, g); err != nil {
			return
		}
		publishers = append(publishers, viewer.Publish)
		group.Go(func() error {
			return viewer.Run(groupCtx)
		})
	default:
		return fmt.Errorf("unknown view %q: want %s or %s", opts.view, viewWeb, viewTUI)
	}

	group.Go(func() error {
		return g.Run(groupCtx, fanOut(publishers...))
	})
	return group.Wait()
}

// finishedCleanly reports whether err only says the app was asked to stop.
func finishedCleanly(err error) bool {
	return err == nil ||
		errors.Is(err, terminal.ErrQuit) ||
		errors.Is(err, context.Canceled)
}

func main() {
	opts := parseFlags()
	setupLogging(opts, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runApp(ctx, opts); !finishedCleanly(err) {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
