package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackjack_rounds_total",
			Help: "Finished rounds by outcome",
		},
		[]string{"outcome"},
	)

	chipsWon = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackjack_chips_won_total",
		Help: "Total chips paid out to players",
	})

	chipsLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackjack_chips_lost_total",
		Help: "Total chips collected from players",
	})
)

// RecordRound records business metrics for a finished round. delta is
// the player's signed chip change.
func RecordRound(outcome string, delta float64) {
	roundsTotal.WithLabelValues(outcome).Inc()
	if delta >= 0 {
		chipsWon.Add(delta)
	} else {
		chipsLost.Add(-delta)
	}
}
