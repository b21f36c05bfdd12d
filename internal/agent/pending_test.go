package agent

import (
	"testing"
	"time"

	"poker-platform/internal/game"
)

func TestPendingTurnSubmitResolvesWait(t *testing.T) {
	pt := newPendingTurn("agent-1", "p1", "table-1", 1, game.PlayerView{}, 5000, time.Now())

	go func() {
		time.Sleep(10 * time.Millisecond)
		if !pt.submit(Decision{Action: game.ActionRaise, Amount: 200}) {
			t.Error("expected first submit to succeed")
		}
	}()

	got := pt.wait(Decision{Action: game.ActionFold})
	if got.Action != game.ActionRaise || got.Amount != 200 {
		t.Fatalf("expected the submitted decision, got %+v", got)
	}
}

func TestPendingTurnSecondSubmitRejected(t *testing.T) {
	pt := newPendingTurn("agent-1", "p1", "table-1", 1, game.PlayerView{}, 5000, time.Now())

	if !pt.submit(Decision{Action: game.ActionCall}) {
		t.Fatal("expected first submit to succeed")
	}
	if pt.submit(Decision{Action: game.ActionRaise}) {
		t.Fatal("expected second submit to be rejected")
	}
}

func TestPendingTurnTimesOutToFallback(t *testing.T) {
	pt := newPendingTurn("agent-1", "p1", "table-1", 1, game.PlayerView{}, 20, time.Now())

	got := pt.wait(Decision{Action: game.ActionFold})
	if got.Action != game.ActionFold {
		t.Fatalf("expected fallback FOLD on timeout, got %+v", got)
	}
}

func TestPendingTurnRemainingMsClampedAtZero(t *testing.T) {
	pt := newPendingTurn("agent-1", "p1", "table-1", 1, game.PlayerView{}, 10, time.Now().Add(-time.Second))
	if got := pt.RemainingMs(time.Now()); got != 0 {
		t.Fatalf("expected remaining time clamped to 0 past deadline, got %d", got)
	}
}
