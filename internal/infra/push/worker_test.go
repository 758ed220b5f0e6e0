package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"docseal/internal/domain"
	"docseal/internal/usecase"
)

type stubConn struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (c *stubConn) Send(n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *stubConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type stubMarker struct {
	mu     sync.Mutex
	marked [][2]int64
	done   chan struct{}
}

func newStubMarker() *stubMarker {
	return &stubMarker{done: make(chan struct{}, 8)}
}

func (m *stubMarker) MarkDelivered(_ context.Context, accountID, notificationID int64, _ time.Time) error {
	m.mu.Lock()
	m.marked = append(m.marked, [2]int64{accountID, notificationID})
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func TestRegistry_ReplaceAndUnregister(t *testing.T) {
	registry := NewRegistry()
	old := &stubConn{}
	registry.Register(1, old)

	newer := &stubConn{}
	registry.Register(1, newer)
	got, ok := registry.Get(1)
	if !ok || got != newer {
		t.Fatal("newer connection should replace the old one")
	}

	// Unregistering the stale connection must not evict the newer one.
	registry.Unregister(1, old)
	if _, ok := registry.Get(1); !ok {
		t.Fatal("newer connection evicted by stale unregister")
	}
	registry.Unregister(1, newer)
	if _, ok := registry.Get(1); ok {
		t.Fatal("connection should be gone")
	}
}

func TestWorker_DeliversAndMarks(t *testing.T) {
	registry := NewRegistry()
	conn := &stubConn{}
	registry.Register(1, conn)
	marker := newStubMarker()
	worker := NewWorker(4, registry, marker, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	worker.Enqueue(usecase.PushJob{AccountID: 1, Notification: domain.Notification{ID: 42, Message: "hello"}})

	select {
	case <-marker.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never marked")
	}
	if conn.sentCount() != 1 {
		t.Fatalf("expected 1 send, got %d", conn.sentCount())
	}
	marker.mu.Lock()
	defer marker.mu.Unlock()
	if len(marker.marked) != 1 || marker.marked[0] != [2]int64{1, 42} {
		t.Fatal("unexpected delivery mark")
	}
}

func TestWorker_SkipsDisconnectedAndFailedSends(t *testing.T) {
	registry := NewRegistry()
	failing := &stubConn{err: errors.New("gone")}
	registry.Register(2, failing)
	marker := newStubMarker()
	worker := NewWorker(4, registry, marker, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		worker.deliver(ctx, usecase.PushJob{AccountID: 1, Notification: domain.Notification{ID: 1}})
		worker.deliver(ctx, usecase.PushJob{AccountID: 2, Notification: domain.Notification{ID: 2}})
		close(done)
	}()
	<-done

	marker.mu.Lock()
	defer marker.mu.Unlock()
	if len(marker.marked) != 0 {
		t.Fatal("nothing should be marked delivered")
	}
}

func TestWorker_EnqueueNeverBlocks(t *testing.T) {
	registry := NewRegistry()
	marker := newStubMarker()
	worker := NewWorker(1, registry, marker, zap.NewNop())

	// Worker not running; the buffered slot fills and the rest must drop.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			worker.Enqueue(usecase.PushJob{AccountID: 1, Notification: domain.Notification{ID: int64(i)}})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}
