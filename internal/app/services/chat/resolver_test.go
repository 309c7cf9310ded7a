package chat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/chat"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
)

func seedListing(t *testing.T, repo *memory.ListingRepository, id, owner string) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(id),
		Owner:       domainlistings.OwnerID(owner),
		ApartmentID: "sunrise-towers",
		Title:       "Cordless drill",
		PriceCents:  500,
		Details:     domainlistings.EquipmentDetails{},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), listing))
	return listing
}

func newResolver(listings *memory.ListingRepository, store *memory.ChatStore, box *memory.Outbox) *chatsvc.Resolver {
	return &chatsvc.Resolver{Listings: listings, Store: store, Outbox: box}
}

func TestResolveRenterCreatesConversationLazily(t *testing.T) {
	listings := memory.NewListingRepository()
	store := memory.NewChatStore()
	box := memory.NewOutbox()
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, store, box)

	resolution, err := resolver.Resolve(context.Background(), "l1", "renter-1")
	require.NoError(t, err)
	assert.Equal(t, chatsvc.ModeRenter, resolution.Mode)
	require.NotNil(t, resolution.Conversation)
	assert.Equal(t, domainchat.Key("renter-1_owner-1_l1"), resolution.Conversation.Key)
	assert.Equal(t, "renter-1", resolution.Conversation.RenterID)
	assert.Equal(t, "owner-1", resolution.Conversation.OwnerID)

	docs := box.List()
	require.Len(t, docs, 1)
	assert.Equal(t, "chat.conversation.created", docs[0].Name)
}

func TestResolveRenterIsIdempotent(t *testing.T) {
	listings := memory.NewListingRepository()
	store := memory.NewChatStore()
	box := memory.NewOutbox()
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, store, box)

	first, err := resolver.Resolve(context.Background(), "l1", "renter-1")
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "l1", "renter-1")
	require.NoError(t, err)

	assert.Equal(t, first.Conversation.Key, second.Conversation.Key)
	assert.Equal(t, first.Conversation.CreatedAt, second.Conversation.CreatedAt)

	threads, err := store.ConversationsByListing(context.Background(), "l1")
	require.NoError(t, err)
	assert.Len(t, threads, 1)
	// only the creating resolve records an event
	assert.Len(t, box.List(), 1)
}

func TestResolveRenterConcurrentEnsure(t *testing.T) {
	listings := memory.NewListingRepository()
	store := memory.NewChatStore()
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, store, memory.NewOutbox())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := resolver.Resolve(context.Background(), "l1", "renter-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	threads, err := store.ConversationsByListing(context.Background(), "l1")
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestResolveOwnerEnumeratesThreads(t *testing.T) {
	listings := memory.NewListingRepository()
	clock := newFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	store := memory.NewChatStore().WithClock(clock.Now)
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, store, memory.NewOutbox())

	for _, renter := range []string{"renter-1", "renter-2"} {
		_, err := resolver.Resolve(context.Background(), "l1", renter)
		require.NoError(t, err)
	}
	// renter-1's thread goes active last
	key := domainchat.Key("renter-1_owner-1_l1")
	clock.Advance(time.Minute)
	require.NoError(t, store.TouchConversation(context.Background(), key, clock.Now()))

	resolution, err := resolver.Resolve(context.Background(), "l1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, chatsvc.ModeOwner, resolution.Mode)
	assert.Nil(t, resolution.Conversation)
	require.Len(t, resolution.Threads, 2)
	assert.Equal(t, key, resolution.Threads[0].Key)
}

func TestResolveOwnerWithNoThreads(t *testing.T) {
	listings := memory.NewListingRepository()
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, memory.NewChatStore(), memory.NewOutbox())

	resolution, err := resolver.Resolve(context.Background(), "l1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, chatsvc.ModeOwner, resolution.Mode)
	assert.Empty(t, resolution.Threads)
}

func TestResolveErrors(t *testing.T) {
	listings := memory.NewListingRepository()
	seedListing(t, listings, "l1", "owner-1")
	resolver := newResolver(listings, memory.NewChatStore(), memory.NewOutbox())

	_, err := resolver.Resolve(context.Background(), "missing", "renter-1")
	assert.ErrorIs(t, err, chatsvc.ErrListingNotFound)

	_, err = resolver.Resolve(context.Background(), "l1", "")
	assert.ErrorIs(t, err, chatsvc.ErrUnauthorized)

	_, err = resolver.Resolve(context.Background(), "", "renter-1")
	assert.ErrorIs(t, err, chatsvc.ErrListingNotFound)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
