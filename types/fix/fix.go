// Package fix holds the raw location readings fed to the tracker,
// and their normalization into whole km/h.
package fix

import (
	"math"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/catspeak/common"
)

// Fix is one raw reading from a location source.
// Only Speed matters to threshold detection; the rest is carried for logging and display.
type Fix struct {
	Time     time.Time
	Point    orb.Point
	Accuracy float64  // horizontal, in meters; 0 if unknown
	Speed    *float64 // in m/s; nil if the source reported none
}

// Kmh is a normalized ground speed in whole kilometers per hour. Never negative.
type Kmh int

func (k Kmh) String() string {
	return strconv.Itoa(int(k))
}

// MetersPerSecond returns a pointer to mps, for building fixes.
func MetersPerSecond(mps float64) *float64 {
	return &mps
}

// MaxKmh caps readings too large to be real, including +Inf.
const MaxKmh = Kmh(math.MaxInt32)

// Normalize clamps a raw m/s reading to zero, converts it to km/h,
// and rounds to the nearest integer. A missing or NaN reading is zero.
func Normalize(mps *float64) Kmh {
	if mps == nil || math.IsNaN(*mps) {
		return 0
	}
	v := *mps
	if v < 0 {
		v = 0
	}
	kmh := common.MpsToKmh(v)
	if kmh >= math.MaxInt32 {
		return MaxKmh
	}
	return Kmh(common.Round(kmh))
}

// Kmh returns the normalized speed of the fix.
func (f Fix) Kmh() Kmh {
	return Normalize(f.Speed)
}

// HasSpeed reports whether the source reported a speed at all.
func (f Fix) HasSpeed() bool {
	return f.Speed != nil
}

// Reading is what gets published for display after a fix is processed.
type Reading struct {
	Speed Kmh       `json:"speed"`
	Band  Band      `json:"band"`
	Time  time.Time `json:"time"`
}

func NewReading(speed Kmh, at time.Time) Reading {
	return Reading{
		Speed: speed,
		Band:  BandOf(speed),
		Time:  at,
	}
}
