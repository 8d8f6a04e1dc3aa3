package tiny

import (
	"testing"
	"time"
)

func TestPacerThreshold(t *testing.T) {
	var slept []time.Duration
	p := NewPacer(10) // threshold = 10 - pacerSlack = 7
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	// One call below the threshold: no pause needed
	for i := 0; i < 6; i++ {
		p.Record()
	}
	if p.ShouldPause() {
		t.Error("Pacer should not pause below the threshold")
	}

	// Reaching the threshold triggers a pause
	p.Record()
	if !p.ShouldPause() {
		t.Error("Pacer should pause once the threshold is reached")
	}

	p.Pause()
	if len(slept) != 1 {
		t.Fatalf("Expected exactly one sleep, got %d", len(slept))
	}
	if slept[0] < pacerCooldown {
		t.Errorf("Pause slept %s, want at least %s", slept[0], pacerCooldown)
	}

	// Counter resets after the pause
	if p.Calls() != 0 {
		t.Errorf("Expected call counter reset to 0, got %d", p.Calls())
	}
	if p.ShouldPause() {
		t.Error("Pacer should not pause right after a reset")
	}
}

func TestPacerMinimumThreshold(t *testing.T) {
	p := NewPacer(1)
	p.Record()
	if !p.ShouldPause() {
		t.Error("Pacer with a tiny remote cap should still pause after one call")
	}
}
