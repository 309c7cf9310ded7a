package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/app/outbox"
	infraoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/infra/outbox"
)

// Outbox keeps pending events in memory. It serves both as the application
// outbox and as a claimable store for the publisher worker, which makes the
// memory wiring behave like the mongo one minus durability.
type Outbox struct {
	mu   sync.Mutex
	docs []*infraoutbox.EventDocument
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	o.docs = append(o.docs, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       "NEW",
		NextAttempt: now,
	})
	return nil
}

func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.docs {
		if (doc.State == "NEW" || doc.State == "FAILED") && !doc.NextAttempt.After(now) {
			doc.State = "CLAIMED"
			doc.ClaimedBy = workerID
			doc.ClaimedAt = now
			clone := *doc
			return &clone, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.docs {
		if doc.ID == id {
			doc.State = "SENT"
			doc.SentAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.docs {
		if doc.ID == id {
			doc.State = "FAILED"
			doc.NextAttempt = next
			doc.LastError = errMsg
			doc.Attempts++
			return nil
		}
	}
	return nil
}

// List snapshots the stored documents. Test hook.
func (o *Outbox) List() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.docs))
	for _, doc := range o.docs {
		out = append(out, *doc)
	}
	return out
}
