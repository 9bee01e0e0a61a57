package settings

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const msPerMinute = 60_000

// ParseInput builds settings from the three raw strings of the edit form:
// the sample interval in (possibly fractional) minutes, a comma-separated
// list of thresholds, and the spoken template.
// Threshold entries are parsed by their leading integer, entries without one
// are dropped, and the remainder is sorted ascending.
func ParseInput(minutes, thresholds, template string) (AppSettings, error) {
	m, err := strconv.ParseFloat(strings.TrimSpace(minutes), 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return AppSettings{}, fmt.Errorf("%w: %q minutes", ErrInvalidSampleRate, minutes)
	}
	if m*msPerMinute > float64(MaxSampleRateMs) {
		return AppSettings{}, fmt.Errorf("%w: %q minutes is too long", ErrInvalidSampleRate, minutes)
	}
	ms := int(math.Floor(m * msPerMinute))
	if ms < 1 {
		return AppSettings{}, fmt.Errorf("%w: %q minutes is under a millisecond", ErrInvalidSampleRate, minutes)
	}

	var levels []int
	for _, field := range strings.Split(thresholds, ",") {
		if n, ok := leadingInt(strings.TrimSpace(field)); ok {
			levels = append(levels, n)
		}
	}
	if len(levels) == 0 {
		return AppSettings{}, ErrNoThresholds
	}
	slices.Sort(levels)

	if !strings.Contains(template, Marker) {
		return AppSettings{}, ErrTemplateMarker
	}
	return AppSettings{
		SampleRateMs:    ms,
		VoiceThresholds: levels,
		VoiceTemplate:   template,
	}, nil
}

// FormatInput renders settings back into the edit form's three strings.
func FormatInput(s AppSettings) (minutes, thresholds, template string) {
	minutes = strconv.FormatFloat(float64(s.SampleRateMs)/msPerMinute, 'f', -1, 64)
	parts := make([]string, len(s.VoiceThresholds))
	for i, t := range s.VoiceThresholds {
		parts[i] = strconv.Itoa(t)
	}
	return minutes, strings.Join(parts, ", "), s.VoiceTemplate
}

// Preview renders the template the way it would be spoken for 60 km/h.
func Preview(template string) string {
	return strings.Replace(template, Marker, "60", 1)
}

// leadingInt parses an optional sign and the digits that follow it, ignoring any trailing text.
// "60km" is 60, "12.7" is 12, "km" is nothing.
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
