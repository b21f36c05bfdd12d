package dashboard

import (
	"testing"
	"time"

	"poker-platform/internal/arena"
	"poker-platform/internal/storage"
)

func TestBusReplaysRetainedActionsToNewSubscriber(t *testing.T) {
	bus := NewBus()
	bus.PublishAction(storage.ActionLogEntry{RoomID: "r1", PlayerID: "p1", Action: "CALL", Amount: 10})
	bus.PublishAction(storage.ActionLogEntry{RoomID: "r1", PlayerID: "p2", Action: "FOLD"})

	messages, id := bus.Subscribe(8)
	defer bus.Unsubscribe(id)

	received := 0
	deadline := time.After(time.Second)
	for received < 2 {
		select {
		case msg := <-messages:
			if msg.Type != MessageAction {
				t.Fatalf("expected replayed messages to be action type, got %s", msg.Type)
			}
			received++
		case <-deadline:
			t.Fatalf("expected 2 replayed actions, got %d", received)
		}
	}
}

func TestBusReplaysOnlyLatestStatsSnapshot(t *testing.T) {
	bus := NewBus()
	bus.PublishStats([]arena.PlayerStats{{PlayerID: "old"}})
	bus.PublishStats([]arena.PlayerStats{{PlayerID: "new"}})

	messages, id := bus.Subscribe(8)
	defer bus.Unsubscribe(id)

	select {
	case msg := <-messages:
		if msg.Type != MessageStats || len(msg.Stats) != 1 || msg.Stats[0].PlayerID != "new" {
			t.Fatalf("expected only the latest stats snapshot to replay, got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a replayed stats snapshot")
	}
}

func TestBusBroadcastsToAllSubscribers(t *testing.T) {
	bus := NewBus()
	messages1, id1 := bus.Subscribe(8)
	messages2, id2 := bus.Subscribe(8)
	defer bus.Unsubscribe(id1)
	defer bus.Unsubscribe(id2)

	bus.PublishHandComplete(HandSummary{TableID: "t1", HandNumber: 5, WinnerID: "alice", Amount: 100})

	for _, ch := range []<-chan Message{messages1, messages2} {
		select {
		case msg := <-ch:
			if msg.Type != MessageHand || msg.Hand.TableID != "t1" {
				t.Fatalf("unexpected broadcast message: %+v", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("expected both subscribers to receive the broadcast")
		}
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	messages, id := bus.Subscribe(8)
	bus.Unsubscribe(id)

	select {
	case _, ok := <-messages:
		if ok {
			t.Fatal("expected the channel to be closed after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("expected the channel to close promptly")
	}
}

func TestBusActionLogCapacityBounded(t *testing.T) {
	bus := NewBus()
	for i := 0; i < actionLogCapacity+50; i++ {
		bus.PublishAction(storage.ActionLogEntry{RoomID: "r1", PlayerID: "p1", Action: "CALL"})
	}

	bus.mu.Lock()
	size := len(bus.actionLog)
	bus.mu.Unlock()

	if size != actionLogCapacity {
		t.Fatalf("expected action log to be capped at %d, got %d", actionLogCapacity, size)
	}
}
