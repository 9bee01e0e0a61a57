package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/rotblauer/catspeak/types/fix"
)

type decodeTestCase struct {
	name                 string
	input                []byte
	expectScanMessages   int
	expectDecodeMessages int
	expectError          error
}

var gf1 = `{"type":"Feature","properties":{"UUID":"76170e959f967f40","Name":"ranga-moto-act3","Time":"2024-12-20T22:19:53.713Z","UnixTime":1734733193,"Version":"gcps/v0.0.0+4","Speed":13.9,"Elevation":1258.4,"Heading":270,"Accuracy":4.1,"Pressure":null},"geometry":{"type":"Point","coordinates":[-113.4733911,47.178916]},"bbox":[-113.4733911,47.178916,-113.4733911,47.178916]}`
var gf2 = `{"type":"Feature","properties":{"UUID":"76170e959f967f40","Name":"ranga-moto-act3","Time":"2024-12-20T22:19:54.713Z","UnixTime":1734733194,"Version":"gcps/v0.0.0+4","Speed":null,"Elevation":1258.4,"Heading":270,"Accuracy":4,"Pressure":null},"geometry":{"type":"Point","coordinates":[-113.473419,47.1788913]},"bbox":[-113.473419,47.1788913,-113.473419,47.1788913]}`
var tp1 = `{"heading":-1,"speed":-1,"uuid":"5D37B5DA-6E0B-41FE-8A72-2BB681D661DA","version":"V.customizableCatTrackHat","long":-93.255531311035156,"time":"2024-12-20T22:09:01.458Z","elevation":322.59848022460938,"lat":44.988998413085938,"accuracy":3.800194263458252,"name":"Rye16"}`
var tp2 = `{"heading":-1,"speed":16.8,"uuid":"5D37B5DA-6E0B-41FE-8A72-2BB681D661DA","version":"V.customizableCatTrackHat","long":-93.255531311035156,"time":"2024-12-20T22:09:06.964Z","elevation":322.59832763671875,"lat":44.988998413085938,"accuracy":3.7969114780426025,"name":"Rye16"}`
var loc1 = `{"coords":{"latitude":10.7769,"longitude":106.7009,"accuracy":5,"altitude":12,"heading":0,"speed":25},"timestamp":1734733193000}`
var loc2 = `{"coords":{"latitude":10.7770,"longitude":106.7010,"accuracy":5,"altitude":12,"heading":0,"speed":null},"timestamp":1734733194000}`

var featsNDJSON_T = decodeTestCase{
	name:                 "featsNDJSON",
	input:                []byte(fmt.Sprintf("%s\n%s\n", gf1, gf2)),
	expectScanMessages:   2,
	expectDecodeMessages: 2,
}
var featsArrayIndented_T = decodeTestCase{
	name:                 "featsArrayIndented",
	input:                []byte(fmt.Sprintf("\n[\n\t%s,\n\t%s\n]\n", gf1, gf2)),
	expectScanMessages:   2,
	expectDecodeMessages: 2,
}
var trackpointsJSONCompact_T = decodeTestCase{
	name:                 "trackpointsJSONCompact",
	input:                []byte(fmt.Sprintf("[%s,%s]", tp1, tp2)),
	expectScanMessages:   2,
	expectDecodeMessages: 2,
}
var locationsNDJSON_T = decodeTestCase{
	name:                 "locationsNDJSON",
	input:                []byte(fmt.Sprintf("%s\n%s\n", loc1, loc2)),
	expectScanMessages:   2,
	expectDecodeMessages: 2,
}
var geojsonFeatureCollectionIndented_T = decodeTestCase{
	name: "geojsonFeatureCollectionIndented",
	input: []byte(fmt.Sprintf(`{
	"type": "FeatureCollection",
	"features": [
		%s,
		%s
	]
}`, gf1, gf2)),
	expectScanMessages:   1,
	expectDecodeMessages: 2,
}
var empty_T = decodeTestCase{
	name:        "empty",
	input:       []byte{},
	expectError: io.EOF,
}
var malformed_T = decodeTestCase{
	name:        "malformed",
	input:       []byte("malformed"),
	expectError: &json.SyntaxError{},
}

func checkDecodeError(t *testing.T, c decodeTestCase, err error) {
	if c.expectError != nil {
		if err == nil {
			t.Fatalf("wanted error: %v (got: nil)", c.expectError)
		}
		var serr *json.SyntaxError
		if errors.As(c.expectError, &serr) {
			if !errors.As(err, &serr) {
				t.Fatalf("returned error: %v", err)
			}
		} else {
			if !errors.Is(err, c.expectError) {
				t.Fatalf("returned error: %v", err)
			}
		}
		return
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScanMessages(t *testing.T) {
	for _, c := range []decodeTestCase{
		featsNDJSON_T,
		featsArrayIndented_T,
		trackpointsJSONCompact_T,
		locationsNDJSON_T,
		geojsonFeatureCollectionIndented_T,
		empty_T,
		malformed_T,
	} {
		t.Run(c.name, func(t *testing.T) {
			msgs := []json.RawMessage{}
			fixes := []fix.Fix{}
			err := ScanJSONMessages(bytes.NewBuffer(c.input), func(message json.RawMessage) error {
				msgs = append(msgs, message)
				return DecodingJSONFixObject(message, func(f fix.Fix) error {
					fixes = append(fixes, f)
					return nil
				})
			})
			checkDecodeError(t, c, err)
			if c.expectError != nil {
				return
			}
			if len(msgs) != c.expectScanMessages {
				t.Errorf("returned %d messages, expected %d", len(msgs), c.expectScanMessages)
			}
			if len(fixes) != c.expectDecodeMessages {
				t.Errorf("decoded %d fixes, expected %d", len(fixes), c.expectDecodeMessages)
			}
		})
	}
}

func TestDecodeFixes_Speeds(t *testing.T) {
	cases := []struct {
		name  string
		input string
		speed []fix.Kmh
		has   []bool
	}{
		{"features", fmt.Sprintf("[%s,%s]", gf1, gf2), []fix.Kmh{50, 0}, []bool{true, false}},
		{"trackpoints", fmt.Sprintf("[%s,%s]", tp1, tp2), []fix.Kmh{0, 60}, []bool{true, true}},
		{"locations", fmt.Sprintf("[%s,%s]", loc1, loc2), []fix.Kmh{90, 0}, []bool{true, false}},
		{"single location", loc1, []fix.Kmh{90}, []bool{true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fixes, err := DecodeFixes([]byte(c.input))
			if err != nil {
				t.Fatal(err)
			}
			if len(fixes) != len(c.speed) {
				t.Fatalf("got %d fixes, want %d", len(fixes), len(c.speed))
			}
			for i, f := range fixes {
				if f.Kmh() != c.speed[i] {
					t.Errorf("fix %d: got %d km/h, want %d", i, f.Kmh(), c.speed[i])
				}
				if f.HasSpeed() != c.has[i] {
					t.Errorf("fix %d: HasSpeed got %v, want %v", i, f.HasSpeed(), c.has[i])
				}
				if f.Time.IsZero() {
					t.Errorf("fix %d: zero time", i)
				}
			}
		})
	}
}

func TestDecodeFixes_Location(t *testing.T) {
	fixes, err := DecodeFixes([]byte(loc1))
	if err != nil {
		t.Fatal(err)
	}
	f := fixes[0]
	if f.Point.Lat() != 10.7769 || f.Point.Lon() != 106.7009 {
		t.Errorf("unexpected point %v", f.Point)
	}
	if f.Time.UnixMilli() != 1734733193000 {
		t.Errorf("unexpected time %v", f.Time)
	}
}

func TestDecodeFixes_Errors(t *testing.T) {
	for _, input := range []string{
		``,
		`not json`,
		`[]`,
		`{"hello":"world"}`,
		`[1,2,3]`,
	} {
		if _, err := DecodeFixes([]byte(input)); !errors.Is(err, ErrDecodeFixes) {
			t.Errorf("input %q: expected ErrDecodeFixes, got %v", input, err)
		}
	}
}
