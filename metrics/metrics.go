// metrics exports game and decision statistics to prometheus.
package metrics

import (
	"time"

	"autosnake/autopilot"
	"autosnake/game"
	"autosnake/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements game.Recorder. Collectors are registered on the
// registerer passed to NewRecorder rather than the global default, so tests
// and multiple games in one process do not collide.
type Recorder struct {
	decisions  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	expansions *prometheus.HistogramVec
	games      *prometheus.CounterVec
	length     prometheus.Gauge
}

var _ game.Recorder = (*Recorder)(nil)

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autosnake_decisions_total",
			Help: "Moves decided, by the rule that produced them and the food search used",
		}, []string{"strategy", "algorithm"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autosnake_decision_duration_seconds",
			Help:    "Time to decide one move",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"algorithm"}),
		expansions: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autosnake_search_expansions",
			Help:    "Cells expanded by the food search per decision",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"algorithm"}),
		games: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autosnake_games_total",
			Help: "Finished games by outcome",
		}, []string{"outcome"}),
		length: factory.NewGauge(prometheus.GaugeOpts{
			Name: "autosnake_snake_length",
			Help: "Current snake length",
		}),
	}
}

func (rec *Recorder) Decision(alg models.Algorithm, decision autopilot.Decision, elapsed time.Duration) {
	rec.decisions.WithLabelValues(decision.Strategy.String(), alg.Key()).Inc()
	rec.duration.WithLabelValues(alg.Key()).Observe(elapsed.Seconds())
	rec.expansions.WithLabelValues(alg.Key()).Observe(float64(len(decision.Visited)))
}

func (rec *Recorder) SnakeLength(n int) {
	rec.length.Set(float64(n))
}

func (rec *Recorder) GameOver(outcome game.Outcome) {
	rec.games.WithLabelValues(outcome.String()).Inc()
}
