package speech

import (
	"slices"
	"testing"
)

func TestMulti(t *testing.T) {
	var got []string
	rec := SpeakerFunc(func(text string, opts Options) {
		got = append(got, text+"/"+opts.Language)
	})
	Multi{rec, nil, Nop, rec}.Speak("90", Options{Language: "vi-VN"})
	if !slices.Equal(got, []string{"90/vi-VN", "90/vi-VN"}) {
		t.Errorf("got %v", got)
	}
}

func TestExec_Command(t *testing.T) {
	e := NewExec(nil)
	got := e.Command("90 km/h", Options{Language: "vi-VN"})
	want := []string{"espeak-ng", "-v", "vi", "90 km/h"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	e = NewExec([]string{"say", "{text}"})
	got = e.Command("hello", Options{Language: "en-US"})
	if !slices.Equal(got, []string{"say", "hello"}) {
		t.Errorf("got %v", got)
	}
}

func TestExec_SpeakMissingBinary(t *testing.T) {
	// Speak never blocks or panics, even when the engine does not exist.
	e := NewExec([]string{"catspeak-no-such-tts-binary", "{text}"})
	e.Speak("50", Options{Language: DefaultLanguage})
}

func TestVoiceOf(t *testing.T) {
	cases := map[string]string{
		"vi-VN": "vi",
		"EN-us": "en",
		"de":    "de",
		"":      "",
	}
	for in, want := range cases {
		if got := voiceOf(in); got != want {
			t.Errorf("voiceOf(%q) = %q, want %q", in, got, want)
		}
	}
}
