package crossing

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/rotblauer/catspeak/types/fix"
)

var defaultThresholds = []int{50, 60, 90, 120}

func TestCrossed(t *testing.T) {
	cases := []struct {
		name      string
		prev, cur fix.Kmh
		want      []int
	}{
		{"below all", 0, 49, nil},
		{"reach exactly", 49, 50, []int{50}},
		{"hover at threshold", 50, 50, nil},
		{"leave threshold upward", 50, 59, nil},
		{"single jump crosses many", 40, 100, []int{50, 60, 90}},
		{"cross all", 0, 200, []int{50, 60, 90, 120}},
		{"descending", 125, 100, nil},
		{"from just below", 119, 120, []int{120}},
		{"equal speeds", 70, 70, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Crossed(c.prev, c.cur, defaultThresholds)
			if !slices.Equal(got, c.want) {
				t.Errorf("Crossed(%d, %d) = %v, want %v", c.prev, c.cur, got, c.want)
			}
		})
	}
}

func TestCrossed_EmptyThresholds(t *testing.T) {
	if got := Crossed(0, 500, nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
	if got := Crossed(0, 500, []int{}); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestCrossed_DuplicatesKept(t *testing.T) {
	got := Crossed(0, 60, []int{50, 50, 60})
	if !slices.Equal(got, []int{50, 50, 60}) {
		t.Errorf("got %v", got)
	}
}

// TestCrossed_Replay walks the canonical sample sequence and checks which
// thresholds fire at each step.
func TestCrossed_Replay(t *testing.T) {
	samples := []fix.Kmh{0, 45, 55, 65, 95, 125, 100, 130}
	want := [][]int{
		nil,   // 0 -> 45
		{50},  // 45 -> 55
		{60},  // 55 -> 65
		{90},  // 65 -> 95
		{120}, // 95 -> 125
		nil,   // 125 -> 100
		{120}, // 100 -> 130
	}
	for i := 1; i < len(samples); i++ {
		got := Crossed(samples[i-1], samples[i], defaultThresholds)
		if !slices.Equal(got, want[i-1]) {
			t.Errorf("step %d -> %d: got %v, want %v", samples[i-1], samples[i], got, want[i-1])
		}
	}
}

// TestCrossed_Properties checks the set definition and purity against random inputs.
func TestCrossed_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for n := 0; n < 1000; n++ {
		thresholds := make([]int, r.Intn(8))
		for i := range thresholds {
			thresholds[i] = r.Intn(200)
		}
		slices.Sort(thresholds)
		prev, cur := fix.Kmh(r.Intn(220)), fix.Kmh(r.Intn(220))

		got := Crossed(prev, cur, thresholds)
		var want []int
		for _, th := range thresholds {
			if int(prev) < th && th <= int(cur) {
				want = append(want, th)
			}
		}
		if !slices.Equal(got, want) {
			t.Fatalf("Crossed(%d, %d, %v) = %v, want %v", prev, cur, thresholds, got, want)
		}
		if cur <= prev && len(got) != 0 {
			t.Fatalf("non-increasing %d -> %d reported %v", prev, cur, got)
		}
		if !slices.IsSorted(got) {
			t.Fatalf("unsorted result %v", got)
		}
		if again := Crossed(prev, cur, thresholds); !slices.Equal(got, again) {
			t.Fatalf("not idempotent: %v then %v", got, again)
		}
	}
}
