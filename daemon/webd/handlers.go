package webd

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotblauer/catspeak/metrics"
	"github.com/rotblauer/catspeak/types"
	"github.com/rotblauer/catspeak/types/fix"
	"github.com/rotblauer/catspeak/types/settings"
)

// maxBodyBytes bounds request bodies for settings and populate.
const maxBodyBytes = 8 << 20

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type webDaemonStatus struct {
	StartedAt time.Time         `json:"started_at"`
	Uptime    string            `json:"uptime"`
	Tracker   string            `json:"tracker"`
	WSConns   int               `json:"ws_conns"`
	Meters    *metrics.Snapshot `json:"meters,omitempty"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Tracker:   s.tracker.State().String(),
		WSConns:   s.melodyInstance.Len(),
	}
	if s.meters != nil {
		snap := s.meters.Snapshot()
		st.Meters = &snap
	}
	s.writeJSON(w, http.StatusOK, st)
}

type speedResponse struct {
	Speed fix.Kmh  `json:"speed"`
	Band  fix.Band `json:"band"`
	State string   `json:"state"`
	Error string   `json:"error"`
}

func (s *WebDaemon) speedResponse() speedResponse {
	speed := s.tracker.Speed()
	return speedResponse{
		Speed: speed,
		Band:  fix.BandOf(speed),
		State: s.tracker.State().String(),
		Error: s.tracker.Err(),
	}
}

func (s *WebDaemon) handleSpeed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.speedResponse())
}

func (s *WebDaemon) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.currentSettings())
}

// settingsForm is the settings screen's three text inputs.
type settingsForm struct {
	Minutes    string `json:"minutes"`
	Thresholds string `json:"thresholds"`
	Template   string `json:"template"`
	Preview    string `json:"preview,omitempty"`
}

func (s *WebDaemon) handleGetSettingsForm(w http.ResponseWriter, r *http.Request) {
	cur := s.currentSettings()
	var form settingsForm
	form.Minutes, form.Thresholds, form.Template = settings.FormatInput(cur)
	form.Preview = settings.Preview(cur.VoiceTemplate)
	s.writeJSON(w, http.StatusOK, form)
}

// handlePutSettings accepts a full JSON settings record.
func (s *WebDaemon) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var next settings.AppSettings
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed settings: " + err.Error()})
		return
	}
	if err := next.Validate(); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	s.apply(w, r, next)
}

// handlePostSettingsForm accepts the three raw input strings,
// as a JSON object or as form values.
func (s *WebDaemon) handlePostSettingsForm(w http.ResponseWriter, r *http.Request) {
	var form settingsForm
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&form); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed form: " + err.Error()})
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		form.Minutes = r.PostFormValue("minutes")
		form.Thresholds = r.PostFormValue("thresholds")
		form.Template = r.PostFormValue("template")
	}
	next, err := settings.ParseInput(form.Minutes, form.Thresholds, form.Template)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	s.apply(w, r, next)
}

type applyResponse struct {
	Settings settings.AppSettings `json:"settings"`
	State    string               `json:"state"`
	Error    string               `json:"error,omitempty"`
}

// apply makes next the settings in effect, persists them, and restarts tracking.
// A failed save is logged by the store; the edit still takes effect.
func (s *WebDaemon) apply(w http.ResponseWriter, r *http.Request, next settings.AppSettings) {
	s.settingsMu.Lock()
	s.settings = next.Clone()
	s.settingsMu.Unlock()

	s.store.Save(r.Context(), next)
	resp := applyResponse{Settings: next}
	if err := s.tracker.Restart(r.Context(), next); err != nil {
		s.logger.Warn("Restart tracker", "error", err)
		resp.Error = err.Error()
	}
	resp.State = s.tracker.State().String()
	s.writeJSON(w, http.StatusOK, resp)
}

type populateResponse struct {
	Accepted int `json:"accepted"`
}

// handlePopulate pushes posted fixes into the live location feed.
// It accepts GeoJSON features, feature collections, location objects,
// and trackpoints, alone or in arrays.
func (s *WebDaemon) handlePopulate(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no live location feed"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Error("Failed to read request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	fixes, err := types.DecodeFixes(body)
	if err != nil {
		s.logger.Warn("Failed to decode", "error", err, "size", len(body))
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	for _, f := range fixes {
		s.feed.Send(f)
	}
	s.logger.Debug("Populated", "fixes", len(fixes))
	s.writeJSON(w, http.StatusOK, populateResponse{Accepted: len(fixes)})
}
