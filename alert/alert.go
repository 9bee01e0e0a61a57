// Package alert turns crossed thresholds into spoken phrases.
package alert

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/catspeak/speech"
	"github.com/rotblauer/catspeak/types/fix"
	"github.com/rotblauer/catspeak/types/settings"
)

// Render substitutes the first template marker with the threshold.
// A template without a marker is returned unchanged.
func Render(template string, threshold int) string {
	return strings.Replace(template, settings.Marker, strconv.Itoa(threshold), 1)
}

// Event records one dispatched alert.
type Event struct {
	Threshold int       `json:"threshold"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Speed     fix.Kmh   `json:"speed"`
	Time      time.Time `json:"time"`
}

// Dispatcher speaks alerts and announces each one on a feed.
// It keeps no queue: each Dispatch is one Speak call, made immediately.
type Dispatcher struct {
	speaker  speech.Speaker
	language string
	feed     event.FeedOf[Event]
	logger   *slog.Logger
}

func NewDispatcher(speaker speech.Speaker, language string) *Dispatcher {
	if speaker == nil {
		speaker = speech.Nop
	}
	if language == "" {
		language = speech.DefaultLanguage
	}
	return &Dispatcher{
		speaker:  speaker,
		language: language,
		logger:   slog.With("d", "alert"),
	}
}

func (d *Dispatcher) Language() string {
	return d.language
}

// Dispatch speaks a single crossed threshold.
// speed is the sample that crossed it; it is only recorded on the event.
func (d *Dispatcher) Dispatch(threshold int, template string, speed fix.Kmh) Event {
	ev := Event{
		Threshold: threshold,
		Text:      Render(template, threshold),
		Language:  d.language,
		Speed:     speed,
		Time:      time.Now(),
	}
	d.logger.Info("Alert", "threshold", threshold, "speed", speed, "text", ev.Text)
	d.speaker.Speak(ev.Text, speech.Options{Language: d.language})
	d.feed.Send(ev)
	return ev
}

// DispatchAll speaks each crossed threshold in the given order.
func (d *Dispatcher) DispatchAll(crossed []int, template string, speed fix.Kmh) []Event {
	events := make([]Event, 0, len(crossed))
	for _, t := range crossed {
		events = append(events, d.Dispatch(t, template, speed))
	}
	return events
}

// Subscribe registers ch to receive every dispatched event.
// Sends block until every subscriber has received, so subscribers must drain promptly.
func (d *Dispatcher) Subscribe(ch chan<- Event) event.Subscription {
	return d.feed.Subscribe(ch)
}
