package webd

import (
	"encoding/json"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"
	"github.com/rotblauer/catspeak/alert"
	"github.com/rotblauer/catspeak/types/fix"
)

type websocketAction string

const (
	websocketActionSpeed websocketAction = "speed"
	websocketActionSpeak websocketAction = "speak"
)

type speedMessage struct {
	Action websocketAction `json:"action"`
	speedResponse
	Time time.Time `json:"time"`
}

// speakMessage asks browser clients to speak text (speechSynthesis).
type speakMessage struct {
	Action    websocketAction `json:"action"`
	Text      string          `json:"text"`
	Language  string          `json:"language"`
	Threshold int             `json:"threshold"`
	Speed     fix.Kmh         `json:"speed"`
	Time      time.Time       `json:"time"`
}

func newSpeakMessage(e alert.Event) speakMessage {
	return speakMessage{
		Action:    websocketActionSpeak,
		Text:      e.Text,
		Language:  e.Language,
		Threshold: e.Threshold,
		Speed:     e.Speed,
		Time:      e.Time,
	}
}

var recentSeq atomic.Uint64

// initMelody sets up the websocket handler.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	// New clients get the current speed, then the recent alerts, oldest first.
	s.melodyInstance.HandleConnect(func(session *melody.Session) {
		s.logger.Debug("Websocket connected", "remote", session.Request.RemoteAddr)
		b, _ := json.Marshal(speedMessage{
			Action:        websocketActionSpeed,
			speedResponse: s.speedResponse(),
			Time:          time.Now(),
		})
		_ = session.Write(b)
		for _, e := range s.recentAlerts() {
			b, _ := json.Marshal(newSpeakMessage(e))
			_ = session.Write(b)
		}
	})

	// Clients have nothing to say to us. Log and drop.
	s.melodyInstance.HandleMessage(func(session *melody.Session, msg []byte) {
		s.logger.Debug("Websocket message", "remote", session.Request.RemoteAddr, "msg", string(msg))
	})

	s.melodyInstance.HandleDisconnect(func(session *melody.Session) {
		s.logger.Debug("Websocket disconnected", "remote", session.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(session *melody.Session, e error) {
		s.logger.Debug("Websocket error", "error", e, "remote", session.Request.RemoteAddr)
	})
}

func (s *WebDaemon) rememberAlert(e alert.Event) {
	s.recent.Set(recentSeq.Add(1), e, ttlcache.DefaultTTL)
}

func (s *WebDaemon) recentAlerts() []alert.Event {
	items := s.recent.Items()
	keys := make([]uint64, 0, len(items))
	for k, item := range items {
		if item.IsExpired() {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]alert.Event, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k].Value())
	}
	return out
}

func (s *WebDaemon) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to marshal websocket message", "error", err)
		return
	}
	if s.melodyInstance.IsClosed() {
		return
	}
	if err := s.melodyInstance.Broadcast(b); err != nil {
		s.logger.Warn("Failed to broadcast", "error", err)
	}
}

// startRelay subscribes to speed readings and alert events and broadcasts
// them to all websocket clients. Subscriptions are open when it returns.
func (s *WebDaemon) startRelay() (stop func()) {
	readings := make(chan fix.Reading, 16)
	events := make(chan alert.Event, 16)
	speedSub := s.tracker.SubscribeSpeed(readings)
	alertSub := s.dispatcher.Subscribe(events)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer speedSub.Unsubscribe()
		defer alertSub.Unsubscribe()
		for {
			select {
			case r := <-readings:
				s.broadcast(speedMessage{
					Action: websocketActionSpeed,
					speedResponse: speedResponse{
						Speed: r.Speed,
						Band:  r.Band,
						State: s.tracker.State().String(),
						Error: s.tracker.Err(),
					},
					Time: r.Time,
				})
			case e := <-events:
				s.rememberAlert(e)
				s.broadcast(newSpeakMessage(e))
			case <-speedSub.Err():
				return
			case <-alertSub.Err():
				return
			case <-quit:
				return
			}
		}
	}()
	return func() {
		close(quit)
		<-done
	}
}
