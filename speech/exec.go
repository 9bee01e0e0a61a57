package speech

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	argText     = "{text}"
	argLanguage = "{lang}"
)

// DefaultExecArgs runs espeak-ng, which ships with most Linux distributions.
var DefaultExecArgs = []string{"espeak-ng", "-v", argLanguage, argText}

// Exec speaks by running an external TTS command, one process per utterance.
// Args is the command line; "{text}" and "{lang}" are substituted in each argument.
// The process is started in its own goroutine and never waited on by the caller.
type Exec struct {
	Args    []string
	Timeout time.Duration
	logger  *slog.Logger
}

func NewExec(args []string) *Exec {
	if len(args) == 0 {
		args = DefaultExecArgs
	}
	return &Exec{
		Args:    args,
		Timeout: 30 * time.Second,
		logger:  slog.With("d", "speech"),
	}
}

// Command builds the command line for one utterance.
func (e *Exec) Command(text string, opts Options) []string {
	out := make([]string, len(e.Args))
	for i, a := range e.Args {
		a = strings.ReplaceAll(a, argLanguage, voiceOf(opts.Language))
		out[i] = strings.ReplaceAll(a, argText, text)
	}
	return out
}

func (e *Exec) Speak(text string, opts Options) {
	argv := e.Command(text, opts)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
		defer cancel()
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			// Engine failures are not surfaced.
			e.logger.Debug("TTS command failed", "argv", argv, "error", err, "output", string(out))
		}
	}()
}

// voiceOf maps a locale tag like vi-VN to the lowercase language code most
// command line engines expect (vi).
func voiceOf(language string) string {
	if language == "" {
		return ""
	}
	base, _, _ := strings.Cut(language, "-")
	return strings.ToLower(base)
}
