package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Producer{}
	err := p.Publish(ctx, "chat.events.v1", "k1", []byte(`{}`), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseWithoutConnection(t *testing.T) {
	p := &Producer{}
	assert.NoError(t, p.Close())
}
