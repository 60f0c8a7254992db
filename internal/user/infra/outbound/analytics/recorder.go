package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

// BatchFlusher persiste lotes de intentos de login (ClickHouse u otro sink).
type BatchFlusher interface {
	LogBatch(ctx context.Context, attempts []userDomain.LoginAttempt) error
}

// Recorder implementa AuthAudit acumulando intentos y volcándolos al sink en
// lotes, en un ciclo periódico o al llenarse el buffer. La auditoría es
// best-effort: un lote que falla se registra y se descarta.
type Recorder struct {
	flusher BatchFlusher
	period  time.Duration
	limit   int
	log     *zap.Logger

	mu      sync.Mutex
	pending []userDomain.LoginAttempt
}

var _ userDomain.AuthAudit = (*Recorder)(nil)

func NewRecorder(flusher BatchFlusher, period time.Duration, limit int, log *zap.Logger) *Recorder {
	return &Recorder{
		flusher: flusher,
		period:  period,
		limit:   limit,
		log:     log,
	}
}

// RecordLogin encola el intento; nunca bloquea más allá del mutex.
func (r *Recorder) RecordLogin(ctx context.Context, attempt userDomain.LoginAttempt) error {
	r.mu.Lock()
	r.pending = append(r.pending, attempt)
	full := len(r.pending) >= r.limit
	r.mu.Unlock()

	if full {
		r.Flush(ctx)
	}
	return nil
}

// Start arranca el ciclo de volcado periódico hasta que el contexto se
// cancele; el último Flush vacía lo pendiente.
func (r *Recorder) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.period)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Flush(ctx)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				r.Flush(flushCtx)
				cancel()
				return
			}
		}
	}()
}

// Flush vuelca el buffer pendiente en un solo lote.
func (r *Recorder) Flush(ctx context.Context) {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := r.flusher.LogBatch(ctx, batch); err != nil {
		r.log.Error("could not flush login audit batch", zap.Int("size", len(batch)), zap.Error(err))
	}
}

// NopAudit descarta los intentos; se usa cuando no hay sink configurado.
type NopAudit struct{}

func (NopAudit) RecordLogin(ctx context.Context, attempt userDomain.LoginAttempt) error { return nil }

var _ userDomain.AuthAudit = NopAudit{}
