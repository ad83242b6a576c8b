package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := id.UserID(12)
	err := pub.Emit(context.Background(), audit.Event{
		UserID: userID,
		Action: string(audit.EventCertificateIssued),
	})
	require.NoError(t, err)

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCertificateIssued), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventCertificateVerified)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, _ := pub.List(context.Background(), 10)
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
	pub.Close()
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := id.UserID(3)
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			UserID: userID,
			Action: string(audit.EventLoginSucceeded),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	release  chan struct{}
	appended atomic.Int32
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	<-s.release
	s.appended.Add(1)
	return nil
}

func TestPublisher_BufferFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var full atomic.Int32
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(pub.Emit(context.Background(), audit.Event{Action: "x"}), ErrBufferFull) {
				full.Add(1)
			}
		}()
	}
	wg.Wait()

	// One event is held by the worker, one sits in the buffer.
	assert.GreaterOrEqual(t, full.Load(), int32(8))

	close(store.release)
	pub.Close()
	assert.Equal(t, int32(10)-full.Load(), store.appended.Load())
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()
	assert.ErrorIs(t, pub.Emit(context.Background(), audit.Event{Action: "x"}), ErrClosed)
}

func TestPublisher_SetsTimestampAndCategory(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventLoginFailed)}))
	after := time.Now()

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventLogout),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(&blockingStore{release: make(chan struct{})})
	defer pub.Close()
	_, err := pub.List(context.Background(), 5)
	assert.Error(t, err)
}
