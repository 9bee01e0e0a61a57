package types

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/catspeak/types/fix"
	"github.com/rotblauer/catspeak/types/trackpoint"
	"github.com/tidwall/gjson"
)

var ErrDecodeFixes = errors.New("could not decode as feature or featurecollection or trackpoint or location object")

// DecodeFixes decodes a single JSON document into fixes.
// The document may be a GeoJSON Feature or FeatureCollection, a legacy TrackPoint,
// a location object ({"coords":{...},"timestamp":...}), or an array of any of these.
func DecodeFixes(data []byte) ([]fix.Fix, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrDecodeFixes)
	}
	var out []fix.Fix
	collect := func(f fix.Fix) error {
		out = append(out, f)
		return nil
	}
	parsed := gjson.ParseBytes(data)
	if parsed.IsArray() {
		for _, el := range parsed.Array() {
			if err := DecodingJSONFixObject([]byte(el.Raw), collect); err != nil {
				return nil, err
			}
		}
	} else if err := DecodingJSONFixObject(data, collect); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty set", ErrDecodeFixes)
	}
	return out, nil
}

// ScanJSONMessages reads a stream of JSON messages from an io.Reader,
// and calls onEach for each decoded message.
// If the stream is encoded as a JSON array, this function will attempt
// to call onEach for each element in the array.
// A GeoJSON FeatureCollection is a single object, and will be treated as such;
// use DecodingJSONFixObject to handle the 'features' within, in this case.
func ScanJSONMessages(body io.Reader, onEach func(message json.RawMessage) error) error {
	buf := bufio.NewReader(body)
	var first byte
	for {
		b, err := buf.ReadByte()
		if err != nil {
			return err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		first = b
		if err := buf.UnreadByte(); err != nil {
			return err
		}
		break
	}
	dec := json.NewDecoder(buf)
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	for dec.More() {
		var msg json.RawMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("decode err: %T %w", err, err)
		}
		if err := onEach(msg); err != nil {
			return err
		}
	}
	return nil
}

// DecodingJSONFixObject decodes a JSON object into one or more fixes.
// If the message is a FeatureCollection, it will call onEach for each feature.
// It assumes that the message is a single object, and will error if given an array.
func DecodingJSONFixObject(msg json.RawMessage, onEach func(f fix.Fix) error) error {
	parsed := gjson.ParseBytes(msg)
	if !parsed.IsObject() {
		return fmt.Errorf("%w: want object, got %s", ErrDecodeFixes, parsed.Type)
	}

	// Only GeoJSON objects will have a 'type' attribute.
	switch parsed.Get("type").String() {
	case "FeatureCollection":
		feats := parsed.Get("features")
		if !feats.IsArray() {
			return errors.New("no 'features' attribute present in feature collection")
		}
		for _, f := range feats.Array() {
			if err := DecodingJSONFixObject([]byte(f.Raw), onEach); err != nil {
				return err
			}
		}
		return nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(msg)
		if err != nil {
			return err
		}
		return onEach(featureFix(f, parsed))
	}

	// Location object, as delivered by phone location APIs.
	if coords := parsed.Get("coords"); coords.IsObject() {
		return onEach(locationFix(coords, parsed.Get("timestamp")))
	}

	// Legacy trackpoint.
	if parsed.Get("lat").Exists() && parsed.Get("long").Exists() {
		tp := &trackpoint.TrackPoint{}
		if err := json.Unmarshal(msg, tp); err != nil {
			return err
		}
		return onEach(tp.Fix())
	}
	return ErrDecodeFixes
}

func featureFix(f *geojson.Feature, raw gjson.Result) fix.Fix {
	out := fix.Fix{
		Speed:    speedOf(raw.Get("properties.Speed")),
		Accuracy: raw.Get("properties.Accuracy").Float(),
	}
	if f.Geometry != nil {
		out.Point = f.Geometry.Bound().Center()
	}
	if unix := raw.Get("properties.UnixTime"); unix.Type == gjson.Number {
		out.Time = time.Unix(unix.Int(), 0)
	} else if t, err := time.Parse(time.RFC3339, raw.Get("properties.Time").String()); err == nil {
		out.Time = t
	}
	return out
}

func locationFix(coords, timestamp gjson.Result) fix.Fix {
	out := fix.Fix{
		Speed:    speedOf(coords.Get("speed")),
		Accuracy: coords.Get("accuracy").Float(),
	}
	out.Point[0] = coords.Get("longitude").Float()
	out.Point[1] = coords.Get("latitude").Float()
	if timestamp.Type == gjson.Number {
		out.Time = time.UnixMilli(timestamp.Int())
	}
	return out
}

// speedOf reads a m/s value, treating null, absent, and non-numeric values as no reading.
func speedOf(res gjson.Result) *float64 {
	if res.Type != gjson.Number {
		return nil
	}
	return fix.MetersPerSecond(res.Float())
}
