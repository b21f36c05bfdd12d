// Package dashboard fans out a retained, bounded window of table
// activity and leaderboard snapshots to websocket subscribers.
package dashboard

import (
	"sync"

	"poker-platform/internal/arena"
	"poker-platform/internal/storage"
)

const (
	actionLogCapacity    = 200
	statSnapshotCapacity = 500
)

// MessageType labels the payload carried by a Message.
type MessageType string

const (
	MessageAction MessageType = "action"
	MessageStats  MessageType = "stats"
	MessageHand   MessageType = "hand_complete"
)

// Message is one unit published to every dashboard subscriber.
type Message struct {
	Type   MessageType             `json:"type"`
	Action *storage.ActionLogEntry `json:"action,omitempty"`
	Stats  []arena.PlayerStats     `json:"stats,omitempty"`
	Hand   *HandSummary            `json:"hand,omitempty"`
}

// HandSummary is a compact notice that a hand finished at a table.
type HandSummary struct {
	TableID    string `json:"tableId"`
	HandNumber int64  `json:"handNumber"`
	WinnerID   string `json:"winnerId,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
}

type subscriber struct {
	ch chan Message
}

// Bus retains a bounded window of recent activity and fans out new
// events to every live subscriber without blocking publishers.
type Bus struct {
	mu sync.Mutex

	actionLog     []storage.ActionLogEntry
	statSnapshots [][]arena.PlayerStats

	subscribers map[int]*subscriber
	nextID      int
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]*subscriber)}
}

// Subscribe registers a new subscriber and immediately replays the
// retained action log and the last known leaderboard snapshot, so a
// client that connects mid-session still sees context.
func (b *Bus) Subscribe(buffer int) (<-chan Message, int) {
	if buffer <= 0 {
		buffer = 32
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan Message, buffer)}
	b.subscribers[id] = sub

	for _, entry := range b.actionLog {
		e := entry
		b.deliver(sub, Message{Type: MessageAction, Action: &e})
	}
	if len(b.statSnapshots) > 0 {
		latest := b.statSnapshots[len(b.statSnapshots)-1]
		b.deliver(sub, Message{Type: MessageStats, Stats: latest})
	}

	return sub.ch, id
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

// PublishAction records one action log entry and broadcasts it.
func (b *Bus) PublishAction(entry storage.ActionLogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.actionLog = append(b.actionLog, entry)
	if len(b.actionLog) > actionLogCapacity {
		b.actionLog = b.actionLog[len(b.actionLog)-actionLogCapacity:]
	}

	b.broadcastLocked(Message{Type: MessageAction, Action: &entry})
}

// PublishStats records and broadcasts a leaderboard snapshot.
func (b *Bus) PublishStats(snapshot []arena.PlayerStats) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.statSnapshots = append(b.statSnapshots, snapshot)
	if len(b.statSnapshots) > statSnapshotCapacity {
		b.statSnapshots = b.statSnapshots[len(b.statSnapshots)-statSnapshotCapacity:]
	}

	b.broadcastLocked(Message{Type: MessageStats, Stats: snapshot})
}

// PublishHandComplete broadcasts a compact hand-complete notice.
func (b *Bus) PublishHandComplete(summary HandSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.broadcastLocked(Message{Type: MessageHand, Hand: &summary})
}

func (b *Bus) broadcastLocked(msg Message) {
	for _, sub := range b.subscribers {
		b.deliver(sub, msg)
	}
}

func (b *Bus) deliver(sub *subscriber, msg Message) {
	select {
	case sub.ch <- msg:
		MessagesBroadcast.WithLabelValues(string(msg.Type)).Inc()
	default:
		MessagesDropped.WithLabelValues(string(msg.Type)).Inc()
	}
}
