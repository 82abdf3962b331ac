package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesRewritten считает исходы конвейера переписывания:
	// rewritten, no_rolls, not_eligible, misconfigured, invalid_roll, too_long, failed.
	MessagesRewritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollhook_messages_rewritten_total",
			Help: "Proxy messages processed by the rewrite pipeline",
		},
		[]string{"result"},
	)

	Rolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollhook_rolls_total",
			Help: "Inline rolls evaluated",
		},
		[]string{"crit"}, // "none", "success", "fail"
	)

	ReactionActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollhook_reaction_actions_total",
			Help: "Delete and edit actions on relayed messages",
		},
		[]string{"action", "result"},
	)

	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollhook_history_writes_total",
			Help: "Background roll history writes",
		},
		[]string{"result"}, // "ok", "failed", "dropped"
	)
)

func CritLabel(crit int) string {
	switch crit {
	case 2:
		return "fail"
	case 1:
		return "success"
	default:
		return "none"
	}
}
