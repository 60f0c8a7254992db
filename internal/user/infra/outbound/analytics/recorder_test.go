package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

type captureFlusher struct {
	mu      sync.Mutex
	batches [][]userDomain.LoginAttempt
}

func (f *captureFlusher) LogBatch(ctx context.Context, attempts []userDomain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, attempts)
	return nil
}

func (f *captureFlusher) snapshot() [][]userDomain.LoginAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]userDomain.LoginAttempt, len(f.batches))
	copy(out, f.batches)
	return out
}

func TestRecorder_FlushesWhenBufferFull(t *testing.T) {
	flusher := &captureFlusher{}
	recorder := NewRecorder(flusher, time.Hour, 3, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.RecordLogin(context.Background(), userDomain.LoginAttempt{Email: "a@example.com"}))
	}

	batches := flusher.snapshot()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestRecorder_ManualFlushDrainsPending(t *testing.T) {
	flusher := &captureFlusher{}
	recorder := NewRecorder(flusher, time.Hour, 100, zap.NewNop())

	require.NoError(t, recorder.RecordLogin(context.Background(), userDomain.LoginAttempt{Email: "a@example.com"}))
	require.NoError(t, recorder.RecordLogin(context.Background(), userDomain.LoginAttempt{Email: "b@example.com"}))

	recorder.Flush(context.Background())
	batches := flusher.snapshot()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)

	// un segundo flush sin pendientes no produce lote
	recorder.Flush(context.Background())
	assert.Len(t, flusher.snapshot(), 1)
}

func TestRecorder_PeriodicFlush(t *testing.T) {
	flusher := &captureFlusher{}
	recorder := NewRecorder(flusher, 10*time.Millisecond, 100, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recorder.Start(ctx)

	require.NoError(t, recorder.RecordLogin(ctx, userDomain.LoginAttempt{Email: "a@example.com"}))

	assert.Eventually(t, func() bool {
		return len(flusher.snapshot()) > 0
	}, time.Second, 5*time.Millisecond)
}
