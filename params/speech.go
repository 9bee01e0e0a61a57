package params

import "time"

const (
	SpeechBackendExec = "exec"
	SpeechBackendLog  = "log"
	SpeechBackendNone = "none"
)

type SpeechConfig struct {
	Backend  string
	Language string
	// Command is the TTS argv; "{text}" and "{lang}" are substituted.
	Command []string
	Timeout time.Duration
}

func DefaultSpeechConfig() *SpeechConfig {
	return &SpeechConfig{
		Backend:  SpeechBackendExec,
		Language: "vi-VN",
		Command:  []string{"espeak-ng", "-v", "{lang}", "{text}"},
		Timeout:  30 * time.Second,
	}
}
