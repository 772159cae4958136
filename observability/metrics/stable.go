package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// StableMetrics aggregates the issuance engine observations exported to
// prometheus. It satisfies the engine's Metrics interface.
type StableMetrics struct {
	mints           *prometheus.CounterVec
	redeems         *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	fees            *prometheus.CounterVec
	collateralRatio *prometheus.GaugeVec
}

var (
	stableOnce     sync.Once
	stableRegistry *StableMetrics
)

// Stable returns the process-wide issuance metrics registry, registering the
// collectors on first use.
func Stable() *StableMetrics {
	stableOnce.Do(func() {
		stableRegistry = &StableMetrics{
			mints: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stable_mints_total",
				Help: "Units minted per stablecoin symbol.",
			}, []string{"symbol"}),
			redeems: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stable_redeems_total",
				Help: "Units redeemed per stablecoin symbol.",
			}, []string{"symbol"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stable_rejected_total",
				Help: "Rejected transitions by operation and reason.",
			}, []string{"op", "reason"}),
			fees: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stable_fees_total",
				Help: "Protocol fees accrued per stablecoin symbol.",
			}, []string{"symbol"}),
			collateralRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "stable_collateral_ratio_bps",
				Help: "Current vault backing ratio in basis points.",
			}, []string{"symbol"}),
		}
		prometheus.MustRegister(
			stableRegistry.mints,
			stableRegistry.redeems,
			stableRegistry.rejected,
			stableRegistry.fees,
			stableRegistry.collateralRatio,
		)
	})
	return stableRegistry
}

// ObserveMint records a successful mint transition.
func (m *StableMetrics) ObserveMint(symbol string, amount, fee uint64) {
	if m == nil {
		return
	}
	m.mints.WithLabelValues(symbol).Add(float64(amount))
	m.fees.WithLabelValues(symbol).Add(float64(fee))
}

// ObserveRedeem records a successful redeem transition.
func (m *StableMetrics) ObserveRedeem(symbol string, amount, fee uint64) {
	if m == nil {
		return
	}
	m.redeems.WithLabelValues(symbol).Add(float64(amount))
	m.fees.WithLabelValues(symbol).Add(float64(fee))
}

// ObserveRejected records a transition aborted by a precondition.
func (m *StableMetrics) ObserveRejected(op, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.rejected.WithLabelValues(op, reason).Inc()
}

// SetCollateralRatio records the latest vault backing ratio.
func (m *StableMetrics) SetCollateralRatio(symbol string, ratioBps uint16) {
	if m == nil {
		return
	}
	m.collateralRatio.WithLabelValues(symbol).Set(float64(ratioBps))
}
