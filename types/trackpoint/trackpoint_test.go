package trackpoint

import "testing"

var trackpointJSONValid = `{
  "heading": 310.8944091796875,
  "speed": 25.1056904792785645,
  "uuid": "5D37B5DA-6E0B-41FE-8A72-2BB681D661DA",
  "version": "V.customizableCatTrackHat",
  "long": -93.259307861328125,
  "time": "2024-11-15T22:57:43.999Z",
  "elevation": 246.0128173828125,
  "lat": 44.985164642333984,
  "accuracy": 4.2884750366210938,
  "name": "Rye16"
}`

func TestTrackPoint_UnmarshalJSON1(t *testing.T) {
	tp := &TrackPoint{}
	err := tp.UnmarshalJSON([]byte(trackpointJSONValid))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp.Name != "Rye16" {
		t.Errorf("expected Name to be 'Rye16', got %q", tp.Name)
	}
	if tp.Time.String() != "2024-11-15 22:57:43.999 +0000 UTC" {
		t.Errorf("expected Time to be '2024-11-15 22:57:43.999 +0000 UTC', got %v", tp.Time)
	}
	if tp.Speed != 25.1056904792785645 {
		t.Errorf("expected Speed to be 25.1056904792785645, got %v", tp.Speed)
	}
	if tp.Lng != -93.259307861328125 {
		t.Errorf("expected Long to be -93.259307861328125, got %v", tp.Lng)
	}
}

var featureGeoJSON = `{"id":0,"type":"Feature","geometry":{"type":"Point","coordinates":[-111.6902967,45.5710024]},"properties":{"Accuracy":4.9,"Name":"ia","Speed":0.45,"Time":"2024-02-04T18:04:31.172Z"}}`

// TestTrackPoint_UnmarshalJSON2 tests the TrackPoint.UnmarshalJSON method
// will return an error when attempting to unmarshal a GeoJSON Feature.
func TestTrackPoint_UnmarshalJSON2(t *testing.T) {
	tp := &TrackPoint{}
	err := tp.UnmarshalJSON([]byte(featureGeoJSON))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestTrackPoint_Fix(t *testing.T) {
	tp := &TrackPoint{}
	if err := tp.UnmarshalJSON([]byte(trackpointJSONValid)); err != nil {
		t.Fatal(err)
	}
	f := tp.Fix()
	if f.Kmh() != 90 {
		t.Errorf("expected 90 km/h, got %d", f.Kmh())
	}
	if f.Point.Lat() != tp.Lat || f.Point.Lon() != tp.Lng {
		t.Errorf("point mismatch: %v", f.Point)
	}
	if !f.Time.Equal(tp.Time) {
		t.Errorf("time mismatch: %v", f.Time)
	}
}
