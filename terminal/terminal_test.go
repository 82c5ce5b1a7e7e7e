package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"autosnake/game"
	"autosnake/grid_world"
	"autosnake/models"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestViewer() (*Viewer, *game.Game, tcell.SimulationScreen) {
	cfg := game.DefaultConfig()
	cfg.Grid = game.GridConfig{Rows: 4, Columns: 4}
	g, err := game.New(cfg, game.WithSeed(1))
	So(err, ShouldBeNil)

	screen := tcell.NewSimulationScreen("UTF-8")
	v, err := NewViewer(screen, g)
	So(err, ShouldBeNil)
	screen.SetSize(60, 12)
	return v, g, screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeys(t *testing.T) {
	Convey("Given a viewer over a small game", t, func() {
		v, g, screen := newTestViewer()
		defer screen.Fini()

		Convey("p toggles pause", func() {
			So(v.handleEvent(key('p')), ShouldBeTrue)
			So(g.Snapshot().Paused, ShouldBeTrue)
			So(v.handleEvent(key('p')), ShouldBeTrue)
			So(g.Snapshot().Paused, ShouldBeFalse)
		})

		Convey("a switches the search", func() {
			So(v.handleEvent(key('a')), ShouldBeTrue)
			So(g.Algorithm(), ShouldEqual, models.Dijkstra)
		})

		Convey("r starts a new game", func() {
			before := g.Snapshot().GameID
			g.Step()
			So(v.handleEvent(key('r')), ShouldBeTrue)
			So(g.Snapshot().GameID, ShouldNotEqual, before)
			So(g.Snapshot().Tick, ShouldEqual, 0)
		})

		Convey("q, Esc and Ctrl-C quit", func() {
			So(v.handleEvent(key('q')), ShouldBeFalse)
			So(v.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)), ShouldBeFalse)
			So(v.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)), ShouldBeFalse)
		})

		Convey("Other keys are ignored", func() {
			So(v.handleEvent(key('z')), ShouldBeTrue)
			So(v.handleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)), ShouldBeTrue)
			So(g.Snapshot().Paused, ShouldBeFalse)
		})
	})
}

func TestDraw(t *testing.T) {
	Convey("Drawing a snapshot", t, func() {
		v, g, screen := newTestViewer()
		defer screen.Fini()

		snap := g.Step()
		v.draw(snap)

		Convey("puts each cell's glyph two columns apart", func() {
			board := grid_world.NewBoard(snap.Grid, snap.Snake, snap.Food, snap.HasFood, snap.Decision)
			head := snap.Snake.Head()
			heading, ok := snap.Snake.Heading()
			So(ok, ShouldBeTrue)
			r, _, _, _ := screen.GetContent(2*head.Col, head.Row)
			So(r, ShouldEqual, arrows[heading])
			So(board.At(head), ShouldEqual, grid_world.Head)

			r, _, _, _ = screen.GetContent(2*snap.Food.Col, snap.Food.Row)
			So(r, ShouldEqual, grid_world.Food.Rune())
		})

		Convey("points the head along its last move", func() {
			So(headRune(models.Snake{{Row: 1, Col: 1}, {Row: 0, Col: 1}}), ShouldEqual, '^')
			So(headRune(models.Snake{{Row: 0, Col: 1}, {Row: 1, Col: 1}}), ShouldEqual, 'v')
			So(headRune(models.Snake{{Row: 0, Col: 1}, {Row: 0, Col: 0}}), ShouldEqual, '<')
			So(headRune(models.Snake{{Row: 0, Col: 0}, {Row: 0, Col: 1}}), ShouldEqual, '>')
			So(headRune(models.Snake{{Row: 0, Col: 0}}), ShouldEqual, grid_world.Head.Rune())
		})

		Convey("writes the status below the board", func() {
			r, _, _, _ := screen.GetContent(0, snap.Grid.Rows+1)
			So(r, ShouldEqual, 'r')
			So(statusLine(snap), ShouldStartWith, "running | A* | length ")
			So(statusLine(snap), ShouldContainSubstring, "/16 | tick 1 | ")
		})
	})

	Convey("A paused game says so", t, func() {
		So(statusLine(game.Snapshot{Paused: true}), ShouldStartWith, "paused")
		So(statusLine(game.Snapshot{Paused: true, Outcome: game.OutcomeWon}), ShouldStartWith, "won")
	})
}

func TestRun(t *testing.T) {
	Convey("Running the viewer", t, func() {
		v, g, screen := newTestViewer()

		Convey("q ends it with ErrQuit", func() {
			errs := make(chan error, 1)
			go func() { errs <- v.Run(context.Background()) }()
			So(screen.PostEvent(key('q')), ShouldBeNil)

			select {
			case err := <-errs:
				So(errors.Is(err, ErrQuit), ShouldBeTrue)
			case <-time.After(2 * time.Second):
				So("viewer did not quit", ShouldBeEmpty)
			}
		})

		Convey("Cancelling the context ends it", func() {
			ctx, cancel := context.WithCancel(context.Background())
			errs := make(chan error, 1)
			go func() { errs <- v.Run(ctx) }()

			v.Publish(ctx, g.Step())
			cancel()
			select {
			case err := <-errs:
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			case <-time.After(2 * time.Second):
				So("viewer did not stop", ShouldBeEmpty)
			}
		})

		Convey("Publish keeps only the newest snapshot", func() {
			v.Publish(context.Background(), game.Snapshot{Tick: 1})
			v.Publish(context.Background(), game.Snapshot{Tick: 2})
			So((<-v.snaps).Tick, ShouldEqual, 2)
			screen.Fini()
		})
	})
}
