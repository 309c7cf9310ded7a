package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

func TestNewKeyCanonicalOrder(t *testing.T) {
	key, err := chat.NewKey("renter-1", "owner-1", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, chat.Key("renter-1_owner-1_listing-1"), key)

	renter, owner, listing, err := key.Parts()
	require.NoError(t, err)
	assert.Equal(t, "renter-1", renter)
	assert.Equal(t, "owner-1", owner)
	assert.Equal(t, "listing-1", listing)
}

func TestNewKeyIsDeterministic(t *testing.T) {
	a, err := chat.NewKey("u1", "u2", "l1")
	require.NoError(t, err)
	b, err := chat.NewKey("u1", "u2", "l1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// swapping the participants yields a different thread
	c, err := chat.NewKey("u2", "u1", "l1")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestNewKeyTrimsInput(t *testing.T) {
	key, err := chat.NewKey("  u1 ", " u2", "l1  ")
	require.NoError(t, err)
	assert.Equal(t, chat.Key("u1_u2_l1"), key)
}

func TestNewKeyValidation(t *testing.T) {
	cases := []struct {
		name    string
		renter  string
		owner   string
		listing string
		want    error
	}{
		{"missing renter", "", "u2", "l1", chat.ErrRenterRequired},
		{"missing owner", "u1", "", "l1", chat.ErrOwnerRequired},
		{"missing listing", "u1", "u2", "", chat.ErrListingRequired},
		{"same participant", "u1", "u1", "l1", chat.ErrSameParticipant},
		{"delimiter in renter", "u_1", "u2", "l1", chat.ErrDelimiterInID},
		{"delimiter in owner", "u1", "u_2", "l1", chat.ErrDelimiterInID},
		{"delimiter in listing", "u1", "u2", "l_1", chat.ErrDelimiterInID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := chat.NewKey(tc.renter, tc.owner, tc.listing)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseKey(t *testing.T) {
	key, err := chat.ParseKey("u1_u2_l1")
	require.NoError(t, err)
	assert.Equal(t, "u1", key.RenterID())
	assert.Equal(t, "u2", key.OwnerID())
	assert.Equal(t, "l1", key.ListingID())

	for _, raw := range []string{"", "u1", "u1_u2", "u1_u2_l1_extra", "u1__l1", "_u2_l1"} {
		_, err := chat.ParseKey(raw)
		assert.ErrorIs(t, err, chat.ErrMalformedKey, "raw=%q", raw)
	}
}

func TestKeyAccessorsOnMalformedKey(t *testing.T) {
	key := chat.Key("not-a-key")
	assert.Empty(t, key.RenterID())
	assert.Empty(t, key.OwnerID())
	assert.Empty(t, key.ListingID())
}
