// terminal draws the game in a tcell screen and maps keys to game controls.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"autosnake/game"
	"autosnake/grid_world"
	"autosnake/models"

	"github.com/gdamore/tcell/v2"
)

// ErrQuit is returned by Run when the user closes the viewer.
var ErrQuit = errors.New("viewer closed by user")

// Controller is the part of the game the keys drive.
type Controller interface {
	Snapshot() game.Snapshot
	TogglePause() bool
	Reset()
	SetAlgorithm(models.Algorithm)
	Algorithm() models.Algorithm
}

var styles = map[grid_world.CellKind]tcell.Style{
	grid_world.Empty:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	grid_world.Visited:  tcell.StyleDefault.Foreground(tcell.ColorSteelBlue),
	grid_world.FoodPath: tcell.StyleDefault.Foreground(tcell.ColorYellow),
	grid_world.TailPath: tcell.StyleDefault.Foreground(tcell.ColorPurple),
	grid_world.Food:     tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	grid_world.Body:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
	grid_world.Tail:     tcell.StyleDefault.Foreground(tcell.ColorOrange),
	grid_world.Head:     tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true),
}

var (
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	helpStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

const helpLine = "p pause  a search  r reset  q quit"

type Viewer struct {
	screen tcell.Screen
	ctl    Controller
	snaps  chan game.Snapshot
	log    *slog.Logger
}

// NewViewer initializes screen, which Run finalizes when it returns.
func NewViewer(screen tcell.Screen, ctl Controller) (*Viewer, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	return &Viewer{
		screen: screen,
		ctl:    ctl,
		snaps:  make(chan game.Snapshot, 1),
		log:    slog.Default().With("component", "terminal"),
	}, nil
}

// Publish queues a snapshot for drawing, replacing any not yet drawn. It has
// the signature of game.PublishFunc and never blocks.
func (v *Viewer) Publish(_ context.Context, snap game.Snapshot) {
	for {
		select {
		case v.snaps <- snap:
			return
		default:
		}
		select {
		case <-v.snaps:
		default:
		}
	}
}

// Run draws snapshots and handles keys until ctx ends or the user quits, in
// which case it returns ErrQuit.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.screen.Fini()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// The screen was finalized.
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.draw(v.ctl.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-v.snaps:
			v.draw(snap)
		case ev, ok := <-events:
			if !ok {
				return ErrQuit
			}
			if !v.handleEvent(ev) {
				return ErrQuit
			}
		}
	}
}

// handleEvent applies one terminal event and reports whether to keep running.
func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() != tcell.KeyRune:
			return true
		}

		switch ev.Rune() {
		case 'q':
			return false
		case 'p':
			paused := v.ctl.TogglePause()
			v.log.Debug("pause toggled", "paused", paused)
		case 'a':
			v.ctl.SetAlgorithm(v.ctl.Algorithm().Toggle())
		case 'r':
			v.ctl.Reset()
		default:
			return true
		}
		v.draw(v.ctl.Snapshot())

	case *tcell.EventResize:
		v.screen.Sync()
		v.draw(v.ctl.Snapshot())
	}
	return true
}

func (v *Viewer) draw(snap game.Snapshot) {
	board := grid_world.NewBoard(snap.Grid, snap.Snake, snap.Food, snap.HasFood, snap.Decision)

	v.screen.Clear()
	board.Visit(func(c models.Cell, kind grid_world.CellKind) {
		glyph := kind.Rune()
		if kind == grid_world.Head {
			glyph = headRune(snap.Snake)
		}
		v.screen.SetContent(2*c.Col, c.Row, glyph, nil, styles[kind])
	})
	drawText(v.screen, 0, snap.Grid.Rows+1, statusStyle, statusLine(snap))
	drawText(v.screen, 0, snap.Grid.Rows+2, helpStyle, helpLine)
	v.screen.Show()
}

var arrows = map[models.Direction]rune{
	models.Up:    '^',
	models.Down:  'v',
	models.Left:  '<',
	models.Right: '>',
}

// headRune points the head along its last move.
func headRune(snake models.Snake) rune {
	if d, ok := snake.Heading(); ok {
		return arrows[d]
	}
	return grid_world.Head.Rune()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// statusLine summarizes the snapshot below the board.
func statusLine(snap game.Snapshot) string {
	state := snap.Outcome.String()
	if snap.Paused && !snap.Outcome.Finished() {
		state = "paused"
	}
	rule := "-"
	if snap.Tick > 0 {
		rule = snap.Decision.Strategy.String()
	}
	return fmt.Sprintf("%s | %s | length %d/%d | tick %d | %s | expanded %d",
		state,
		snap.Algorithm,
		len(snap.Snake),
		snap.Grid.Size(),
		snap.Tick,
		rule,
		len(snap.Decision.Visited))
}
