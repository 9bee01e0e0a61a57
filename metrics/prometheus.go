package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRegistry exposes the meters as prometheus collectors.
// Values are read from the meters at scrape time.
func (m *Meters) PrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "catspeak_fixes_total",
			Help: "Location fixes processed",
		}, func() float64 { return float64(m.fixes.Snapshot().Count()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "catspeak_crossings_total",
			Help: "Thresholds crossed from below",
		}, func() float64 { return float64(m.crossings.Snapshot().Count()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "catspeak_utterances_total",
			Help: "Alerts handed to the speaker",
		}, func() float64 { return float64(m.utterances.Snapshot().Count()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "catspeak_speed_kmh",
			Help: "Last normalized speed",
		}, func() float64 { return float64(m.speed.Load()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "catspeak_top_speed_kmh",
			Help: "Highest normalized speed seen",
		}, func() float64 { return float64(m.top.Load()) }),
	)
	return reg
}
