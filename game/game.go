// game runs the autopilot against a board: it asks the engine for a move each
// tick, applies it, places food and decides when the game is over.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"autosnake/atomic_float"
	"autosnake/autopilot"
	"autosnake/models"

	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/exp/rand"
)

// Outcome is the state of a game; every value but OutcomeRunning is final.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	// OutcomeWon means the snake fills the board.
	OutcomeWon
	// OutcomeTrapped means the engine found no move.
	OutcomeTrapped
	// OutcomeCollided means a chosen move hit the wall or the body.
	OutcomeCollided
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeWon:
		return "won"
	case OutcomeTrapped:
		return "trapped"
	case OutcomeCollided:
		return "collided"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o Outcome) Finished() bool {
	return o != OutcomeRunning
}

// Recorder observes game events, e.g. to export metrics. Calls are made with
// the game's lock held and must return quickly.
type Recorder interface {
	Decision(alg models.Algorithm, decision autopilot.Decision, elapsed time.Duration)
	SnakeLength(n int)
	GameOver(outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) Decision(models.Algorithm, autopilot.Decision, time.Duration) {}
func (nopRecorder) SnakeLength(int)                                              {}
func (nopRecorder) GameOver(Outcome)                                             {}

// Snapshot is a copy of the game state taken after a tick. Viewers may keep
// and read it freely; nothing in it is modified afterwards.
type Snapshot struct {
	GameID    string           `json:"gameId"`
	Tick      int              `json:"tick"`
	Grid      models.Grid      `json:"grid"`
	Snake     models.Snake     `json:"snake"`
	Food      models.Cell      `json:"food"`
	HasFood   bool             `json:"hasFood"`
	Algorithm models.Algorithm `json:"algorithm"`
	Paused    bool             `json:"paused"`
	Outcome   Outcome          `json:"outcome"`
	// Decision is the most recent engine result. Its diagnostics are cleared
	// after a meal, since they described the route to the food just eaten.
	Decision autopilot.Decision `json:"decision"`
	// AvgDecision is a moving average of the engine's decision time.
	AvgDecision time.Duration `json:"avgDecision"`
}

// PublishFunc receives each snapshot produced by Run. It is called on the
// game loop's goroutine and should not block for long.
type PublishFunc func(context.Context, Snapshot)

// Weight of the latest sample in the decision-time moving average.
const latencyAlpha = 0.1

type Game struct {
	cfg    Config
	grid   models.Grid
	start  models.Snake
	engine *autopilot.Engine
	rec    Recorder
	log    *slog.Logger
	seed   uint64

	// Readable without the lock.
	latency *atomic_float.AtomicFloat64

	mu        sync.Mutex
	rng       *rand.Rand
	id        string
	tick      int
	snake     models.Snake
	food      models.Cell
	hasFood   bool
	alg       models.Algorithm
	paused    bool
	outcome   Outcome
	decision  autopilot.Decision
	decisions int
}

type Option func(*Game)

func WithRecorder(rec Recorder) Option {
	return func(g *Game) { g.rec = rec }
}

func WithLogger(log *slog.Logger) Option {
	return func(g *Game) { g.log = log }
}

// WithSeed fixes food placement, overriding the config seed.
func WithSeed(seed uint64) Option {
	return func(g *Game) { g.seed = seed }
}

// New validates cfg and starts a fresh, unpaused game.
func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, _ := cfg.Board()
	start, _ := cfg.Snake()
	alg, _ := models.ParseAlgorithm(cfg.Algorithm)

	g := &Game{
		cfg:     cfg,
		grid:    grid,
		start:   start,
		engine:  autopilot.NewEngine(grid),
		rec:     nopRecorder{},
		log:     slog.Default().With("component", "game"),
		seed:    cfg.Seed,
		latency: atomic_float.NewAtomicFloat64(0),
		alg:     alg,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seed == 0 {
		g.seed = uint64(time.Now().UnixNano())
	}
	g.rng = rand.New(rand.NewSource(g.seed))

	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
	return g, nil
}

func (g *Game) Grid() models.Grid {
	return g.grid
}

// reset starts a new game on the current algorithm. Callers hold mu.
func (g *Game) reset() {
	g.id = uuid.New().String()
	g.tick = 0
	g.snake = g.start.Clone()
	g.outcome = OutcomeRunning
	g.decision = autopilot.Decision{}
	g.placeFood()
	g.rec.SnakeLength(len(g.snake))
	g.log.Debug("new game", "game", g.id, "algorithm", g.alg, "food", g.food)
}

// placeFood picks a uniformly random free cell. A board with no free cell is won.
func (g *Game) placeFood() {
	body := g.snake.Set()
	free := make([]models.Cell, 0, g.grid.Size()-len(g.snake))
	g.grid.Visit(func(c models.Cell) {
		if !body.Has(c) {
			free = append(free, c)
		}
	})

	if len(free) == 0 {
		g.hasFood = false
		g.finish(OutcomeWon)
		return
	}
	g.food = free[g.rng.Intn(len(free))]
	g.hasFood = true
}

func (g *Game) finish(outcome Outcome) {
	g.outcome = outcome
	g.rec.GameOver(outcome)
	g.log.Info("game over",
		"game", g.id,
		"outcome", outcome,
		"length", len(g.snake),
		"tick", g.tick,
		"algorithm", g.alg)
}

// Step advances the game by one tick and returns the resulting snapshot.
// A paused or finished game is left unchanged.
func (g *Game) Step() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused || g.outcome.Finished() {
		return g.snapshot()
	}
	g.tick++

	started := time.Now()
	decision, err := g.engine.CalculateMove(g.snake, g.food, g.alg)
	elapsed := time.Since(started)
	if err != nil {
		// The game only ever holds states it validated itself.
		g.log.Error("engine rejected game state", "game", g.id, "tick", g.tick, "err", err)
		g.finish(OutcomeCollided)
		return g.snapshot()
	}

	g.decision = decision
	g.observeLatency(elapsed)
	g.rec.Decision(g.alg, decision, elapsed)

	if !decision.HasMove {
		g.finish(OutcomeTrapped)
		return g.snapshot()
	}
	g.advance(decision.Next)
	return g.snapshot()
}

// advance moves the head to next, growing when it lands on the food.
func (g *Game) advance(next models.Cell) {
	if !g.grid.InBounds(next) || !models.Adjacent(g.snake.Head(), next) {
		g.finish(OutcomeCollided)
		return
	}

	grows := g.hasFood && next == g.food
	// The tail cell is free to enter unless the snake grows this tick.
	if g.snake.Contains(next) && !(next == g.snake.Tail() && !grows) {
		g.finish(OutcomeCollided)
		return
	}

	if grows {
		g.snake = append(g.snake, next)
		g.decision = autopilot.Decision{
			Next:     g.decision.Next,
			HasMove:  g.decision.HasMove,
			Strategy: g.decision.Strategy,
		}
		g.placeFood()
	} else {
		g.snake = append(g.snake[1:], next)
	}
	g.rec.SnakeLength(len(g.snake))
}

func (g *Game) observeLatency(elapsed time.Duration) {
	g.decisions++
	if g.decisions == 1 {
		g.latency.AtomicSet(elapsed.Seconds())
		return
	}
	// A single writer holds mu, so the swap cannot lose.
	g.latency.AtomicBlend(elapsed.Seconds(), latencyAlpha)
}

// AverageDecision returns the moving average of the engine's decision time.
// It does not take the game lock.
func (g *Game) AverageDecision() time.Duration {
	return time.Duration(g.latency.AtomicRead() * float64(time.Second))
}

// Snapshot returns the current state without advancing it.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	return Snapshot{
		GameID:      g.id,
		Tick:        g.tick,
		Grid:        g.grid,
		Snake:       g.snake.Clone(),
		Food:        g.food,
		HasFood:     g.hasFood,
		Algorithm:   g.alg,
		Paused:      g.paused,
		Outcome:     g.outcome,
		Decision:    g.decision,
		AvgDecision: g.AverageDecision(),
	}
}

func (g *Game) Pause() {
	g.setPaused(true)
}

func (g *Game) Resume() {
	g.setPaused(false)
}

// TogglePause flips the paused state and returns the new value.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = !g.paused
	return g.paused
}

func (g *Game) setPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}

// Reset abandons the current game and starts a new one. Pause state and the
// selected algorithm carry over.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// SetAlgorithm switches the food search from the next tick on.
func (g *Game) SetAlgorithm(alg models.Algorithm) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if alg != g.alg {
		g.log.Debug("algorithm changed", "game", g.id, "from", g.alg, "to", alg)
	}
	g.alg = alg
}

func (g *Game) Algorithm() models.Algorithm {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alg
}

// Run steps the game every TickInterval and publishes each snapshot until ctx
// is cancelled. With RestartOnGameOver set, a finished game is replaced by a
// new one after RestartDelay.
func (g *Game) Run(ctx context.Context, publish PublishFunc) error {
	g.log.Info("game loop started",
		"rows", g.grid.Rows,
		"columns", g.grid.Columns,
		"tick", g.cfg.TickInterval)

	var restartAt time.Time
	ticker := channerics.NewTicker(ctx.Done(), g.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			g.log.Info("game loop stopped")
			return ctx.Err()
		case <-ticker:
		}

		snap := g.Step()
		publish(ctx, snap)

		switch {
		case !snap.Outcome.Finished() || !g.cfg.RestartOnGameOver:
			restartAt = time.Time{}
		case restartAt.IsZero():
			restartAt = time.Now().Add(g.cfg.RestartDelay)
		case !time.Now().Before(restartAt):
			g.Reset()
			restartAt = time.Time{}
		}
	}
}
