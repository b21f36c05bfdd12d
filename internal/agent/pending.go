package agent

import (
	"sync"
	"time"

	"poker-platform/internal/game"
)

// PendingTurn is a one-shot slot holding the decision expected from a
// push- or pull-mode agent, with a hard deadline. At most one
// PendingTurn may exist per agent at a time.
type PendingTurn struct {
	mu sync.Mutex

	AgentID     string
	PlayerID    string
	TableID     string
	HandNumber  int64
	View        game.PlayerView
	TimeoutMs   int64
	StartedAt   time.Time

	resolved bool
	result   chan Decision
}

func newPendingTurn(agentID, playerID, tableID string, handNumber int64, view game.PlayerView, timeoutMs int64, startedAt time.Time) *PendingTurn {
	return &PendingTurn{
		AgentID:    agentID,
		PlayerID:   playerID,
		TableID:    tableID,
		HandNumber: handNumber,
		View:       view,
		TimeoutMs:  timeoutMs,
		StartedAt:  startedAt,
		result:     make(chan Decision, 1),
	}
}

// RemainingMs is the time left before this turn's deadline, clamped
// at zero.
func (p *PendingTurn) RemainingMs(now time.Time) int64 {
	elapsed := now.Sub(p.StartedAt).Milliseconds()
	remaining := p.TimeoutMs - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// submit resolves the pending turn with d. Returns false if it was
// already resolved (by a prior submission or a timeout).
func (p *PendingTurn) submit(d Decision) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return false
	}
	p.resolved = true
	p.result <- d
	return true
}

// expire resolves the pending turn with the table's default fallback
// action if nothing else has resolved it yet. Returns false if it was
// already resolved.
func (p *PendingTurn) expire(fallback Decision) bool {
	return p.submit(fallback)
}

// wait blocks until the turn resolves, either by submission or by the
// deadline elapsing, in which case fallback is returned.
func (p *PendingTurn) wait(fallback Decision) Decision {
	timer := time.NewTimer(time.Duration(p.TimeoutMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case d := <-p.result:
		return d
	case <-timer.C:
		p.expire(fallback)
		select {
		case d := <-p.result:
			return d
		default:
			return fallback
		}
	}
}
