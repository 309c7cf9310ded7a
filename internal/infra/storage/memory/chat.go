package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

// ChatStore is the in-memory rendition of the chat document store. Watchers
// get full-snapshot deliveries through a buffered latest-wins channel: a slow
// consumer only skips intermediate states, never sees a partial list.
type ChatStore struct {
	mu            sync.RWMutex
	conversations map[chat.Key]*chat.Conversation
	messages      map[chat.Key][]chat.Message
	watchers      map[chat.Key]map[int]*chatFeed
	seq           int
	nextWatcher   int
	clock         func() time.Time
}

var _ chat.Store = (*ChatStore)(nil)

func NewChatStore() *ChatStore {
	return &ChatStore{
		conversations: make(map[chat.Key]*chat.Conversation),
		messages:      make(map[chat.Key][]chat.Message),
		watchers:      make(map[chat.Key]map[int]*chatFeed),
		clock:         time.Now,
	}
}

// WithClock swaps the timestamp source. Test hook.
func (s *ChatStore) WithClock(clock func() time.Time) *ChatStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clock != nil {
		s.clock = clock
	}
	return s
}

func (s *ChatStore) Conversation(_ context.Context, key chat.Key) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversation, ok := s.conversations[key]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	return cloneConversation(conversation), nil
}

func (s *ChatStore) EnsureConversation(_ context.Context, conversation *chat.Conversation) (*chat.Conversation, bool, error) {
	if conversation == nil || conversation.Key == "" {
		return nil, false, chat.ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.conversations[conversation.Key]; ok {
		return cloneConversation(existing), false, nil
	}
	stored := cloneConversation(conversation)
	s.conversations[conversation.Key] = stored
	return cloneConversation(stored), true, nil
}

func (s *ChatStore) TouchConversation(_ context.Context, key chat.Key, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.conversations[key]
	if !ok {
		return chat.ErrConversationNotFound
	}
	if at.IsZero() {
		at = s.clock()
	}
	at = at.UTC()
	if at.After(conversation.UpdatedAt) {
		conversation.UpdatedAt = at
	}
	return nil
}

func (s *ChatStore) ConversationsByListing(_ context.Context, listingID string) ([]chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chat.Conversation
	for _, conversation := range s.conversations {
		if conversation.ListingID == listingID {
			out = append(out, *cloneConversation(conversation))
		}
	}
	return out, nil
}

func (s *ChatStore) ConversationsByParticipant(_ context.Context, userID string) ([]chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chat.Conversation
	for _, conversation := range s.conversations {
		if conversation.HasParticipant(userID) {
			out = append(out, *cloneConversation(conversation))
		}
	}
	return out, nil
}

func (s *ChatStore) AppendMessage(_ context.Context, key chat.Key, senderID, text string) (*chat.Message, error) {
	s.mu.Lock()
	if _, ok := s.conversations[key]; !ok {
		s.mu.Unlock()
		return nil, chat.ErrConversationNotFound
	}
	s.seq++
	message := chat.Message{
		ID:              fmt.Sprintf("msg-%06d", s.seq),
		ConversationKey: key,
		SenderID:        senderID,
		Text:            text,
		CreatedAt:       s.clock().UTC(),
		Read:            false,
	}
	s.messages[key] = append(s.messages[key], message)
	snapshot := cloneMessages(s.messages[key])
	feeds := s.feedsFor(key)
	s.mu.Unlock()

	deliver(feeds, snapshot)
	return &message, nil
}

func (s *ChatStore) Messages(_ context.Context, key chat.Key) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conversations[key]; !ok {
		return nil, chat.ErrConversationNotFound
	}
	return cloneMessages(s.messages[key]), nil
}

func (s *ChatStore) MarkMessageRead(_ context.Context, key chat.Key, messageID string) error {
	s.mu.Lock()
	list, ok := s.messages[key]
	if !ok {
		s.mu.Unlock()
		return chat.ErrConversationNotFound
	}
	found := false
	changed := false
	for i := range list {
		if list[i].ID == messageID {
			found = true
			if !list[i].Read {
				list[i].Read = true
				changed = true
			}
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return chat.ErrMessageNotFound
	}
	var feeds []*chatFeed
	var snapshot []chat.Message
	if changed {
		snapshot = cloneMessages(list)
		feeds = s.feedsFor(key)
	}
	s.mu.Unlock()

	if changed {
		deliver(feeds, snapshot)
	}
	return nil
}

func (s *ChatStore) SubscribeMessages(_ context.Context, key chat.Key) (chat.MessageFeed, error) {
	s.mu.Lock()
	if _, ok := s.conversations[key]; !ok {
		s.mu.Unlock()
		return nil, chat.ErrConversationNotFound
	}
	s.nextWatcher++
	feed := &chatFeed{
		store: s,
		key:   key,
		id:    s.nextWatcher,
		ch:    make(chan []chat.Message, 1),
	}
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[int]*chatFeed)
	}
	s.watchers[key][feed.id] = feed
	initial := cloneMessages(s.messages[key])
	s.mu.Unlock()

	// first delivery is the state at subscribe time
	feed.push(initial)
	return feed, nil
}

func (s *ChatStore) feedsFor(key chat.Key) []*chatFeed {
	feeds := make([]*chatFeed, 0, len(s.watchers[key]))
	for _, feed := range s.watchers[key] {
		feeds = append(feeds, feed)
	}
	return feeds
}

func (s *ChatStore) unsubscribe(key chat.Key, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feeds, ok := s.watchers[key]; ok {
		delete(feeds, id)
		if len(feeds) == 0 {
			delete(s.watchers, key)
		}
	}
}

func deliver(feeds []*chatFeed, snapshot []chat.Message) {
	for _, feed := range feeds {
		feed.push(snapshot)
	}
}

type chatFeed struct {
	store  *ChatStore
	key    chat.Key
	id     int
	ch     chan []chat.Message
	mu     sync.Mutex
	closed bool
}

var _ chat.MessageFeed = (*chatFeed)(nil)

func (f *chatFeed) Snapshots() <-chan []chat.Message { return f.ch }

func (f *chatFeed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.store.unsubscribe(f.key, f.id)
	f.mu.Lock()
	close(f.ch)
	f.mu.Unlock()
}

// push replaces a pending undelivered snapshot instead of blocking. Each
// delivered value is a private copy.
func (f *chatFeed) push(snapshot []chat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for {
		select {
		case f.ch <- cloneMessages(snapshot):
			return
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}

func cloneConversation(c *chat.Conversation) *chat.Conversation {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Participants = append([]string(nil), c.Participants...)
	return &clone
}

func cloneMessages(list []chat.Message) []chat.Message {
	return append([]chat.Message(nil), list...)
}
