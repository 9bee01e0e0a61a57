// Package speech is the boundary to text-to-speech engines.
//
// Speak is fire-and-forget. Implementations must return promptly and must not
// queue, retry, or report failure; how an engine handles overlapping requests
// (queue, interrupt, or drop) is the engine's business.
package speech

import "log/slog"

// DefaultLanguage is the locale requested of the engine unless configured otherwise.
const DefaultLanguage = "vi-VN"

type Options struct {
	Language string
}

type Speaker interface {
	Speak(text string, opts Options)
}

// SpeakerFunc adapts a function to a Speaker.
type SpeakerFunc func(text string, opts Options)

func (f SpeakerFunc) Speak(text string, opts Options) {
	f(text, opts)
}

// Log is a Speaker that only logs what it would have said.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Speak(text string, opts Options) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Speak", "text", text, "language", opts.Language)
}

// Multi fans an utterance out to every speaker, in order.
type Multi []Speaker

func (m Multi) Speak(text string, opts Options) {
	for _, s := range m {
		if s != nil {
			s.Speak(text, opts)
		}
	}
}

// Nop says nothing.
var Nop = SpeakerFunc(func(string, Options) {})
