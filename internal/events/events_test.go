package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestDispatcherDeliversToAllHandlersDespiteErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventTicketRated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketRated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketRated}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaForwarderKeysByTicket(t *testing.T) {
	w := &recordingWriter{}
	f := &KafkaForwarder{writer: w}
	d := NewInMemoryDispatcher(nil)
	SubscribeAll(d, f.Handle)

	event := Event{
		ID:        "e1",
		Type:      EventTicketStatusChanged,
		TicketID:  "TKT-000007",
		Actor:     Actor{ID: "s1", Role: domain.RoleStaff},
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:   TicketStatusChangedPayload{OldStatus: domain.TicketStatusOpen, NewStatus: domain.TicketStatusClosed},
	}
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "TKT-000007", string(w.msgs[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "ticket_status_changed", decoded["type"])
	assert.Equal(t, "closed", decoded["payload"].(map[string]any)["newStatus"])
}
