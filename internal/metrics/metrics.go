// Package metrics exposes the autoplayer's Prometheus series, served at
// /metrics in text exposition format by cmd/autoplayer.
//
//   - autoplayer_actions_total{type}        – actions sent, by action type
//   - autoplayer_acks_total{ok,code}        – acks received, by outcome
//   - autoplayer_snapshots_total            – STATE messages consumed
//   - autoplayer_snapshot_version           – last snapshot version seen (gauge)
//   - autoplayer_cash                       – local player's cash (gauge)
//   - autoplayer_engine_stuck               – 1 while mortgage rescue is out of retries
//   - autoplayer_reconnects_total           – websocket reconnect attempts
//   - autoplayer_trades_total{outcome}      – trades resolved (accepted|declined|cancelled)
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplayer_actions_total",
			Help: "Actions sent to the server",
		},
		[]string{"type"},
	)

	Acks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplayer_acks_total",
			Help: "Acks received, split by outcome and error code",
		},
		[]string{"ok", "code"},
	)

	Snapshots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autoplayer_snapshots_total",
			Help: "STATE messages consumed",
		},
	)

	SnapshotVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplayer_snapshot_version",
			Help: "Last snapshot version seen",
		},
	)

	Cash = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplayer_cash",
			Help: "Local player's cash balance",
		},
	)

	EngineStuck = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplayer_engine_stuck",
			Help: "1 while the mortgage rescue has exhausted its retries",
		},
	)

	Reconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autoplayer_reconnects_total",
			Help: "Websocket reconnect attempts",
		},
	)

	Trades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplayer_trades_total",
			Help: "Trades resolved, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(Actions, Acks, Snapshots, SnapshotVersion)
	prometheus.MustRegister(Cash, EngineStuck, Reconnects, Trades)
}

func ObserveAck(ok bool, code string) {
	okLabel := "true"
	if !ok {
		okLabel = "false"
	}
	if code == "" {
		code = "none"
	}
	Acks.WithLabelValues(okLabel, code).Inc()
}

// ObserveTrade counts a resolved trade. Outcome is one of accepted,
// declined, cancelled.
func ObserveTrade(outcome string) {
	Trades.WithLabelValues(outcome).Inc()
}

func SetStuck(stuck bool) {
	if stuck {
		EngineStuck.Set(1)
		return
	}
	EngineStuck.Set(0)
}
