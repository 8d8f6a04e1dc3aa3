package tiny

import (
	"log"
	"sync"
	"time"
)

const (
	// The Tiny API enforces an undocumented per-minute call cap. We treat
	// the limit as reached a few calls early: a false early pause costs one
	// cooldown, exceeding the real cap aborts the whole run with throttling
	// errors.
	pacerSlack = 3

	// Cooldown is a full rate window plus margin so the remote counter has
	// certainly rolled over before calls resume.
	pacerCooldown = 75 * time.Second
)

// Pacer counts remote API calls and forces a blocking cooldown before the
// remote per-minute cap is reached.
type Pacer struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	calls     int

	// sleep is swappable in tests
	sleep func(time.Duration)
}

// NewPacer creates a pacer for a remote cap of remoteLimit calls per minute
func NewPacer(remoteLimit int) *Pacer {
	threshold := remoteLimit - pacerSlack
	if threshold < 1 {
		threshold = 1
	}
	return &Pacer{
		threshold: threshold,
		cooldown:  pacerCooldown,
		sleep:     time.Sleep,
	}
}

// Record counts one remote call against the current window
func (p *Pacer) Record() {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

// ShouldPause reports whether the threshold for this window has been reached
func (p *Pacer) ShouldPause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls >= p.threshold
}

// Pause blocks for the cooldown duration and resets the call counter.
// The wait is deliberate, not an error condition.
func (p *Pacer) Pause() {
	log.Printf("⏸️ Olist: API call threshold reached (%d), pausing %s to respect rate limit", p.threshold, p.cooldown)
	p.sleep(p.cooldown)
	p.mu.Lock()
	p.calls = 0
	p.mu.Unlock()
}

// Calls returns the number of calls recorded in the current window
func (p *Pacer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
