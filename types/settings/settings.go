// Package settings is the persisted configuration of the speed announcer:
// how often to sample, which speeds to announce, and what to say.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Marker is replaced with the crossed speed when a template is spoken.
const Marker = "{speed}"

// AppSettings is stored wholesale as JSON under a single key.
type AppSettings struct {
	// SampleRateMs is the requested interval between location fixes.
	SampleRateMs int `json:"sampleRateMs"`

	// VoiceThresholds are the km/h levels announced when crossed from below.
	// Ascending. Duplicates are tolerated.
	VoiceThresholds []int `json:"voiceThresholds"`

	// VoiceTemplate is the phrase spoken for a crossing. It should contain Marker.
	VoiceTemplate string `json:"voiceTemplate"`
}

// Defaults returns a fresh copy of the default settings.
func Defaults() AppSettings {
	return AppSettings{
		SampleRateMs:    5 * 60 * 1000,
		VoiceThresholds: []int{50, 60, 90, 120},
		VoiceTemplate:   Marker,
	}
}

// MaxSampleRateMs is the longest interval a time.Duration can hold, in ms.
const MaxSampleRateMs = math.MaxInt64 / int64(time.Millisecond)

// Interval is the sample rate as a duration.
// Rates past MaxSampleRateMs are capped rather than wrapped.
func (s AppSettings) Interval() time.Duration {
	if int64(s.SampleRateMs) > MaxSampleRateMs {
		return time.Duration(MaxSampleRateMs) * time.Millisecond
	}
	return time.Duration(s.SampleRateMs) * time.Millisecond
}

// Clone returns a copy that shares no memory with s.
func (s AppSettings) Clone() AppSettings {
	s.VoiceThresholds = slices.Clone(s.VoiceThresholds)
	return s
}

func (s AppSettings) Equal(other AppSettings) bool {
	return s.SampleRateMs == other.SampleRateMs &&
		s.VoiceTemplate == other.VoiceTemplate &&
		slices.Equal(s.VoiceThresholds, other.VoiceThresholds)
}

var (
	ErrInvalidSampleRate = errors.New("invalid sample interval")
	ErrNoThresholds      = errors.New("enter at least one speed threshold")
	ErrThresholdOrder    = errors.New("speed thresholds must be ascending")
	ErrTemplateMarker    = fmt.Errorf("template must contain %q", Marker)
)

// Validate checks a structured record against the same rules the input form enforces.
func (s AppSettings) Validate() error {
	if s.SampleRateMs <= 0 || int64(s.SampleRateMs) > MaxSampleRateMs {
		return fmt.Errorf("%w: %d ms", ErrInvalidSampleRate, s.SampleRateMs)
	}
	if len(s.VoiceThresholds) == 0 {
		return ErrNoThresholds
	}
	if !slices.IsSorted(s.VoiceThresholds) {
		return fmt.Errorf("%w: %v", ErrThresholdOrder, s.VoiceThresholds)
	}
	if !strings.Contains(s.VoiceTemplate, Marker) {
		return ErrTemplateMarker
	}
	return nil
}

// Decode reads a stored record, merging it shallowly over Defaults.
// Absent, null, or ill-typed fields keep their default value.
// An error is returned only when data is not a JSON object at all;
// the returned settings are usable (the defaults) in that case too.
func Decode(data []byte) (AppSettings, error) {
	out := Defaults()
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return out, err
	}
	decodeField(fields, "sampleRateMs", &out.SampleRateMs)
	decodeField(fields, "voiceThresholds", &out.VoiceThresholds)
	decodeField(fields, "voiceTemplate", &out.VoiceTemplate)
	return out, nil
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// Encode serializes the full record.
func (s AppSettings) Encode() ([]byte, error) {
	if s.VoiceThresholds == nil {
		s.VoiceThresholds = []int{}
	}
	return json.Marshal(s)
}
