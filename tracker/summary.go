package tracker

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/rotblauer/catspeak/common"
	"github.com/rotblauer/catspeak/types/fix"
)

// summaryWindow bounds the speeds kept for a session summary.
const summaryWindow = 4096

type summary struct {
	speeds stats.Float64Data
	n      int64
	first  time.Time
	last   time.Time
	byBand map[fix.Band]int64
}

func newSummary() *summary {
	return &summary{byBand: map[fix.Band]int64{}}
}

func (s *summary) add(r fix.Reading) {
	if s.n == 0 {
		s.first = r.Time
	}
	s.n++
	s.last = r.Time
	s.byBand[r.Band]++
	if len(s.speeds) == summaryWindow {
		s.speeds = s.speeds[1:]
	}
	s.speeds = append(s.speeds, float64(r.Speed))
}

type summaryStats struct {
	Max    float64
	Mean   float64
	Median float64
}

func (s *summary) stats() (summaryStats, error) {
	var out summaryStats
	var err error
	if out.Max, err = stats.Max(s.speeds); err != nil {
		return out, err
	}
	if out.Mean, err = stats.Mean(s.speeds); err != nil {
		return out, err
	}
	out.Median, err = stats.Median(s.speeds)
	return out, err
}

func (s *summary) log(logger *slog.Logger) {
	if s.n == 0 {
		logger.Info("Session ended", "fixes", 0)
		return
	}
	st, err := s.stats()
	if err != nil {
		logger.Warn("Session summary", "error", err)
		return
	}
	logger.Info("Session ended",
		"fixes", humanize.Comma(s.n),
		"span", s.last.Sub(s.first).Round(time.Second),
		"max", st.Max,
		"mean", common.DecimalToFixed(st.Mean, 1),
		"median", st.Median,
		"danger", s.byBand[fix.BandDanger])
}
