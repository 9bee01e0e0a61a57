package trackpoint

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/catspeak/types/fix"
)

// TrackPoint is the flat, legacy (iOS) shape of a location reading.
type TrackPoint struct {
	Uuid          string    `json:"uuid"`
	Name          string    `json:"name"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"long"`
	Accuracy      float64   `json:"accuracy"`       // horizontal, in meters
	Speed         float64   `json:"speed"`          // in m/s, -1 when invalid
	SpeedAccuracy float64   `json:"speed_accuracy"` // in meters per second
	Heading       float64   `json:"heading"`        // in degrees
	Time          time.Time `json:"time"`
}

// UnmarshalJSON is a custom unmarshaler for TrackPoint.
// It asserts that the Time field is a valid RFC3339 time.
// If this method attempts to unmarshal data which is actually a GeoJSON Feature
// it will fail, as the GeoJSON Feature will not have a flat Time field.
func (tp *TrackPoint) UnmarshalJSON(data []byte) error {
	type Alias TrackPoint
	aux := &struct {
		Time string `json:"time"`
		*Alias
	}{
		Alias: (*Alias)(tp),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	tp.Time, err = time.Parse(time.RFC3339, aux.Time)
	if err != nil {
		return err
	}
	return nil
}

// Fix converts the trackpoint into a location fix.
func (tp *TrackPoint) Fix() fix.Fix {
	return fix.Fix{
		Time:     tp.Time,
		Point:    orb.Point{tp.Lng, tp.Lat},
		Accuracy: tp.Accuracy,
		Speed:    fix.MetersPerSecond(tp.Speed),
	}
}
