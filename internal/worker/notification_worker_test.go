package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

func TestNotificationWorkerDeliversAndDrains(t *testing.T) {
	d := events.NewInMemoryDispatcher(nil)
	var (
		mu  sync.Mutex
		got []string
	)
	d.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		mu.Lock()
		got = append(got, e.TicketID)
		mu.Unlock()
		return nil
	})

	w := NewNotificationWorker(d, zap.NewNop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for _, id := range []string{"TKT-000001", "TKT-000002", "TKT-000003"} {
		require.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: id}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"TKT-000001", "TKT-000002", "TKT-000003"}, got)
}

func TestNotificationWorkerDropsWhenFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(nil), zap.NewNop(), 1)
	require.NoError(t, w.Publish(context.Background(), events.Event{TicketID: "a"}))
	require.NoError(t, w.Publish(context.Background(), events.Event{TicketID: "b"}))
	assert.Len(t, w.queue, 1)
}
