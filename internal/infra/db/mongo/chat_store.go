package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

// ChatStore keeps conversations and messages in two collections. The
// conversation key is the document _id, which is what makes ensure
// idempotent: concurrent upserts for the same key hit the same document.
type ChatStore struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
	logger        *slog.Logger
}

var _ domainchat.Store = (*ChatStore)(nil)

func NewChatStore(db *mongo.Database, logger *slog.Logger) *ChatStore {
	conversations := db.Collection("chat_conversations")
	messages := db.Collection("chat_messages")
	_, _ = conversations.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
	})
	_, _ = messages.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_key", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return &ChatStore{conversations: conversations, messages: messages, logger: logger}
}

type conversationDocument struct {
	Key          string   `bson:"_id"`
	RenterID     string   `bson:"renter_id"`
	OwnerID      string   `bson:"owner_id"`
	ListingID    string   `bson:"listing_id"`
	Participants []string `bson:"participants"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newConversationDocument(c *domainchat.Conversation) conversationDocument {
	return conversationDocument{
		Key:          string(c.Key),
		RenterID:     c.RenterID,
		OwnerID:      c.OwnerID,
		ListingID:    c.ListingID,
		Participants: append([]string(nil), c.Participants...),
		CreatedAt:    c.CreatedAt.UnixMilli(),
		UpdatedAt:    c.UpdatedAt.UnixMilli(),
	}
}

func (d conversationDocument) toAggregate() *domainchat.Conversation {
	return &domainchat.Conversation{
		Key:          domainchat.Key(d.Key),
		RenterID:     d.RenterID,
		OwnerID:      d.OwnerID,
		ListingID:    d.ListingID,
		Participants: append([]string(nil), d.Participants...),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

type messageDocument struct {
	ID              string `bson:"_id"`
	ConversationKey string `bson:"conversation_key"`
	SenderID        string `bson:"sender_id"`
	Text            string `bson:"text"`
	CreatedAt       int64  `bson:"created_at"`
	Read            bool   `bson:"read"`
}

func (d messageDocument) toAggregate() domainchat.Message {
	return domainchat.Message{
		ID:              d.ID,
		ConversationKey: domainchat.Key(d.ConversationKey),
		SenderID:        d.SenderID,
		Text:            d.Text,
		CreatedAt:       timestampToTime(d.CreatedAt),
		Read:            d.Read,
	}
}

func (s *ChatStore) Conversation(ctx context.Context, key domainchat.Key) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := s.conversations.FindOne(ctx, bson.M{"_id": string(key)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (s *ChatStore) EnsureConversation(ctx context.Context, conversation *domainchat.Conversation) (*domainchat.Conversation, bool, error) {
	if conversation == nil || conversation.Key == "" {
		return nil, false, domainchat.ErrKeyRequired
	}
	doc := newConversationDocument(conversation)
	update := bson.M{"$setOnInsert": doc}
	opts := options.Update().SetUpsert(true)
	res, err := s.conversations.UpdateByID(ctx, doc.Key, update, opts)
	if err != nil {
		// a concurrent ensure can race the upsert into a duplicate key;
		// the document exists either way
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, fmt.Errorf("mongo: ensure conversation: %w", err)
		}
		res = &mongo.UpdateResult{}
	}
	created := res.UpsertedCount > 0
	stored, err := s.Conversation(ctx, conversation.Key)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *ChatStore) TouchConversation(ctx context.Context, key domainchat.Key, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	update := bson.M{"$max": bson.M{"updated_at": at.UTC().UnixMilli()}}
	res, err := s.conversations.UpdateByID(ctx, string(key), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrConversationNotFound
	}
	return nil
}

func (s *ChatStore) ConversationsByListing(ctx context.Context, listingID string) ([]domainchat.Conversation, error) {
	return s.findConversations(ctx, bson.M{"listing_id": listingID})
}

func (s *ChatStore) ConversationsByParticipant(ctx context.Context, userID string) ([]domainchat.Conversation, error) {
	return s.findConversations(ctx, bson.M{"participants": userID})
}

func (s *ChatStore) findConversations(ctx context.Context, filter bson.M) ([]domainchat.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainchat.Conversation
	for cursor.Next(ctx) {
		var doc conversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toAggregate())
	}
	return out, cursor.Err()
}

func (s *ChatStore) AppendMessage(ctx context.Context, key domainchat.Key, senderID, text string) (*domainchat.Message, error) {
	if _, err := s.Conversation(ctx, key); err != nil {
		return nil, err
	}
	doc := messageDocument{
		ID:              primitive.NewObjectID().Hex(),
		ConversationKey: string(key),
		SenderID:        senderID,
		Text:            text,
		CreatedAt:       time.Now().UTC().UnixMilli(),
		Read:            false,
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("mongo: insert message: %w", err)
	}
	message := doc.toAggregate()
	return &message, nil
}

func (s *ChatStore) Messages(ctx context.Context, key domainchat.Key) ([]domainchat.Message, error) {
	if _, err := s.Conversation(ctx, key); err != nil {
		return nil, err
	}
	return s.messagesAscending(ctx, key)
}

func (s *ChatStore) messagesAscending(ctx context.Context, key domainchat.Key) ([]domainchat.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"conversation_key": string(key)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainchat.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (s *ChatStore) MarkMessageRead(ctx context.Context, key domainchat.Key, messageID string) error {
	filter := bson.M{"_id": messageID, "conversation_key": string(key)}
	res, err := s.messages.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrMessageNotFound
	}
	return nil
}

// SubscribeMessages opens a change stream on the message collection filtered
// to one conversation. Every event re-materializes the full ascending list;
// consumers always see complete states, never deltas.
func (s *ChatStore) SubscribeMessages(ctx context.Context, key domainchat.Key) (domainchat.MessageFeed, error) {
	if _, err := s.Conversation(ctx, key); err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":                bson.M{"$in": bson.A{"insert", "update", "replace"}},
			"fullDocument.conversation_key": string(key),
		}}},
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.messages.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mongo: watch messages: %w", err)
	}

	feed := &chatFeed{
		ch:     make(chan []domainchat.Message, 1),
		cancel: cancel,
	}
	initial, err := s.messagesAscending(ctx, key)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, err
	}
	feed.push(initial)

	go s.pumpFeed(streamCtx, stream, key, feed)
	return feed, nil
}

func (s *ChatStore) pumpFeed(ctx context.Context, stream *mongo.ChangeStream, key domainchat.Key, feed *chatFeed) {
	defer func() {
		_ = stream.Close(context.Background())
		feed.finish()
	}()
	for stream.Next(ctx) {
		snapshot, err := s.messagesAscending(ctx, key)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("message feed requery failed", "key", key, "error", err)
			}
			continue
		}
		feed.push(snapshot)
	}
}

// chatFeed delivers full snapshots latest-wins through a buffered channel.
type chatFeed struct {
	ch     chan []domainchat.Message
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

var _ domainchat.MessageFeed = (*chatFeed)(nil)

func (f *chatFeed) Snapshots() <-chan []domainchat.Message { return f.ch }

func (f *chatFeed) Close() {
	f.cancel()
}

func (f *chatFeed) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}

func (f *chatFeed) push(snapshot []domainchat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for {
		select {
		case f.ch <- snapshot:
			return
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}
