package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModeBuyNow = "buy_now"
	ModeCart   = "cart"

	ResultCreated  = "created"
	ResultReplayed = "replayed"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

var (
	CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_checkout_total",
		Help: "Checkout attempts by mode and result.",
	}, []string{"mode", "result"})

	CheckoutDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_checkout_duration_seconds",
		Help:    "Checkout latency by mode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	StockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_stock_conflicts_total",
		Help: "Checkouts aborted because stock ran out inside the transaction.",
	})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_side_effect_failures_total",
		Help: "Best-effort post-commit work that failed, by kind.",
	}, []string{"kind"})
)

func ObserveCheckout(mode, result string, started time.Time) {
	CheckoutTotal.WithLabelValues(mode, result).Inc()
	CheckoutDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}
