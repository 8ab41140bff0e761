package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCurrencyFlow = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "ledger",
		Name:      "currency_total",
		Help:      "Currency moved through the ledger.",
	}, []string{"currency", "direction"})

	metricCheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "activity",
		Name:      "check_ins_total",
		Help:      "Successful daily check-ins.",
	})

	metricDailyCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "activity",
		Name:      "daily_completions_total",
		Help:      "Days on which a user completed every activity.",
	})

	metricPosts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "social",
		Name:      "posts_total",
		Help:      "Posts created.",
	})

	metricAchievementClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "achievement",
		Name:      "claims_total",
		Help:      "Achievement rewards claimed.",
	}, []string{"achievement"})

	metricGachaPulls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "gacha",
		Name:      "pulls_total",
		Help:      "Gacha pulls by tier and drawn rarity.",
	}, []string{"tier", "rarity"})

	metricRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Subsystem: "engine",
		Name:      "rejections_total",
		Help:      "Business-rule rejections by code.",
	}, []string{"code"})
)

func countRejection(outcome Outcome) Outcome {
	if outcome.Rejected() {
		metricRejections.WithLabelValues(outcome.Code).Inc()
	}
	return outcome
}
