// Package metrics counts fixes, crossings and utterances and logs their rates.
package metrics

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/catspeak/common"
	"github.com/rotblauer/catspeak/types/fix"
)

type Meters struct {
	reg     metrics.Registry
	started time.Time
	last    atomic.Int64 // unix nano of the last fix
	top     atomic.Int64 // max km/h seen
	speed   atomic.Int64 // last km/h seen

	fixes      metrics.Counter
	crossings  metrics.Counter
	utterances metrics.Counter
	fixMeter   metrics.Meter
	alertMeter metrics.Meter
	logger     *slog.Logger
}

// Snapshot is a point-in-time copy of the meters.
type Snapshot struct {
	Fixes      int64     `json:"fixes"`
	Crossings  int64     `json:"crossings"`
	Utterances int64     `json:"utterances"`
	FixRate1   float64   `json:"fixRate1"`
	AlertRate1 float64   `json:"alertRate1"`
	Speed      fix.Kmh   `json:"speed"`
	TopSpeed   fix.Kmh   `json:"topSpeed"`
	LastFix    time.Time `json:"lastFix"`
	Running    string    `json:"running"`
}

func NewMeters() *Meters {
	// Won't work without this global setting.
	metrics.Enabled = true

	m := &Meters{
		reg:        metrics.NewRegistry(),
		started:    time.Now(),
		fixes:      metrics.NewCounter(),
		crossings:  metrics.NewCounter(),
		utterances: metrics.NewCounter(),
		fixMeter:   metrics.NewMeter(),
		alertMeter: metrics.NewMeter(),
		logger:     slog.With("d", "metrics"),
	}
	for name, v := range map[string]interface{}{
		"fix.count":       m.fixes,
		"crossing.count":  m.crossings,
		"utterance.count": m.utterances,
		"fix.meter":       m.fixMeter,
		"alert.meter":     m.alertMeter,
	} {
		if err := m.reg.Register(name, v); err != nil {
			panic(err)
		}
	}
	return m
}

func (m *Meters) MarkFix(r fix.Reading) {
	m.fixes.Inc(1)
	m.fixMeter.Mark(1)
	m.last.Store(r.Time.UnixNano())
	m.speed.Store(int64(r.Speed))
	for {
		top := m.top.Load()
		if int64(r.Speed) <= top || m.top.CompareAndSwap(top, int64(r.Speed)) {
			break
		}
	}
}

func (m *Meters) MarkCrossings(n int) {
	if n <= 0 {
		return
	}
	m.crossings.Inc(int64(n))
}

func (m *Meters) MarkUtterance() {
	m.utterances.Inc(1)
	m.alertMeter.Mark(1)
}

func (m *Meters) Snapshot() Snapshot {
	s := Snapshot{
		Fixes:      m.fixes.Snapshot().Count(),
		Crossings:  m.crossings.Snapshot().Count(),
		Utterances: m.utterances.Snapshot().Count(),
		FixRate1:   common.DecimalToFixed(m.fixMeter.Snapshot().Rate1(), 3),
		AlertRate1: common.DecimalToFixed(m.alertMeter.Snapshot().Rate1(), 3),
		Speed:      fix.Kmh(m.speed.Load()),
		TopSpeed:   fix.Kmh(m.top.Load()),
		Running:    time.Since(m.started).Round(time.Second).String(),
	}
	if last := m.last.Load(); last != 0 {
		s.LastFix = time.Unix(0, last)
	}
	return s
}

// Run logs the meters every interval until ctx is done.
func (m *Meters) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log()
			return
		case <-ticker.C:
			m.log()
		}
	}
}

// attrs renders every registered metric as log key/value pairs, by name.
func (m *Meters) attrs() []any {
	var names []string
	values := map[string]any{}
	m.reg.Each(func(name string, i interface{}) {
		switch v := i.(type) {
		case metrics.Counter:
			values[name] = humanize.Comma(v.Snapshot().Count())
		case metrics.Meter:
			name += ".rate1"
			values[name] = common.DecimalToFixed(v.Snapshot().Rate1(), 3)
		default:
			return
		}
		names = append(names, name)
	})
	sort.Strings(names)
	out := make([]any, 0, 2*len(names))
	for _, name := range names {
		out = append(out, name, values[name])
	}
	return out
}

func (m *Meters) log() {
	s := m.Snapshot()
	last := "never"
	if !s.LastFix.IsZero() {
		last = humanize.Time(s.LastFix)
	}
	args := append(m.attrs(), "top", s.TopSpeed, "fix.last", last, "running", s.Running)
	m.logger.Info("Meters", args...)
}

func (m *Meters) Stop() {
	m.fixMeter.Stop()
	m.alertMeter.Stop()
}
