package game

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// TurnTimer arms a single deadline for the table's active seat and
// fires a caller-supplied default-action callback if it isn't
// cancelled first. Exactly one timer is armed per table at any time;
// starting a new one implicitly cancels the last.
type TurnTimer struct {
	clock quartz.Clock
	mu    sync.Mutex
	timer *quartz.Timer
}

// NewTurnTimer builds a timer driven by clock. A nil clock falls back
// to quartz.NewReal(), matching production use; tests inject
// quartz.NewMock(t) for deterministic expiry.
func NewTurnTimer(clock quartz.Clock) *TurnTimer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &TurnTimer{clock: clock}
}

// Start arms the timer for duration, calling onExpire if it is not
// cancelled first. Any previously armed deadline is disarmed.
func (t *TurnTimer) Start(timeoutMs int64, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.AfterFunc(msToDuration(timeoutMs), onExpire)
}

// Cancel disarms the current deadline, if any. Safe to call when no
// timer is armed.
func (t *TurnTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
