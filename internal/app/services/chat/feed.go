package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

// Snapshot is one full-list delivery from a message feed, tagged with the
// generation of the subscription that produced it. Deliveries replace the
// working set; they are never appended.
type Snapshot struct {
	Key        domainchat.Key
	Generation uint64
	Messages   []domainchat.Message
}

// FeedManager holds the single live message subscription of one viewing
// context. Switching conversations tears the previous feed down and bumps a
// generation counter; a snapshot whose generation is no longer current is
// discarded before it can touch state, so a late delivery for an abandoned
// key can never overwrite the active conversation.
type FeedManager struct {
	Store      domainchat.Store
	ViewerID   string
	Logger     *slog.Logger
	OnSnapshot func(Snapshot)

	mu         sync.Mutex
	generation uint64
	feed       domainchat.MessageFeed
	key        domainchat.Key
	current    []domainchat.Message
}

// Switch makes key the active conversation. The previous feed is closed
// before the new subscription's snapshots can be applied.
func (m *FeedManager) Switch(ctx context.Context, key domainchat.Key) error {
	if m.Store == nil {
		return errors.New("chat: store required")
	}
	m.mu.Lock()
	if m.feed != nil {
		m.feed.Close()
		m.feed = nil
	}
	m.generation++
	generation := m.generation
	m.mu.Unlock()

	feed, err := m.Store.SubscribeMessages(ctx, key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if generation != m.generation {
		// another Switch or Close won while we were subscribing
		m.mu.Unlock()
		feed.Close()
		return nil
	}
	m.feed = feed
	m.mu.Unlock()

	go m.pump(ctx, generation, key, feed)
	return nil
}

func (m *FeedManager) pump(ctx context.Context, generation uint64, key domainchat.Key, feed domainchat.MessageFeed) {
	for messages := range feed.Snapshots() {
		m.Apply(ctx, Snapshot{Key: key, Generation: generation, Messages: messages})
	}
}

// Apply installs a snapshot and reports whether it was accepted. Stale
// generations are dropped without side effects. Accepted snapshots trigger
// best-effort read-flag updates for unread counterpart messages.
func (m *FeedManager) Apply(ctx context.Context, snapshot Snapshot) bool {
	m.mu.Lock()
	if snapshot.Generation != m.generation {
		m.mu.Unlock()
		return false
	}
	m.key = snapshot.Key
	m.current = append([]domainchat.Message(nil), snapshot.Messages...)
	m.mu.Unlock()

	m.markCounterpartRead(ctx, snapshot)
	if m.OnSnapshot != nil {
		m.OnSnapshot(snapshot)
	}
	return true
}

// Current returns the active key and a copy of the displayed message list.
func (m *FeedManager) Current() (domainchat.Key, []domainchat.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, append([]domainchat.Message(nil), m.current...)
}

// Generation exposes the current generation counter.
func (m *FeedManager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Close releases the active feed and invalidates in-flight snapshots.
func (m *FeedManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	if m.feed != nil {
		m.feed.Close()
		m.feed = nil
	}
	m.key = ""
	m.current = nil
}

func (m *FeedManager) markCounterpartRead(ctx context.Context, snapshot Snapshot) {
	if m.ViewerID == "" {
		return
	}
	for _, msg := range domainchat.UnreadFrom(snapshot.Messages, m.ViewerID) {
		messageID := msg.ID
		BestEffort(m.Logger, "mark message read", func() error {
			return m.Store.MarkMessageRead(ctx, snapshot.Key, messageID)
		})
	}
}
