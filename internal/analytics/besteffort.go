// internal/analytics/besteffort.go
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
)

const defaultWriteTimeout = 3 * time.Second

// BestEffort writes records in the background. Failures and panics are
// logged, counted and discarded; callers never wait on a write.
type BestEffort struct {
	sink    Sink
	timeout time.Duration
	logger  logger.Logger

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func NewBestEffort(sink Sink, timeout time.Duration, log logger.Logger) *BestEffort {
	if sink == nil {
		sink = Nop{}
	}
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &BestEffort{
		sink:    sink,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "analytics", "sink": sink.Name()}),
	}
}

func (b *BestEffort) Name() string { return b.sink.Name() }

// Emit schedules rec for writing and returns immediately. Records emitted
// after Close has started are dropped.
func (b *BestEffort) Emit(rec Record) {
	if _, nop := b.sink.(Nop); nop {
		return
	}

	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		metrics.AnalyticsDropped.WithLabelValues(b.sink.Name()).Inc()
		b.logger.Debug("analytics record dropped after close", map[string]interface{}{
			"recordId": rec.ID,
			"kind":     rec.Kind,
		})
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		if err := b.write(rec); err != nil {
			metrics.AnalyticsDropped.WithLabelValues(b.sink.Name()).Inc()
			b.logger.Warn("analytics record dropped", map[string]interface{}{
				"recordId": rec.ID,
				"kind":     rec.Kind,
				"outcome":  rec.Outcome,
				"error":    err,
			})
		}
	}()
}

func (b *BestEffort) write(rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analytics sink panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.sink.Record(ctx, rec)
}

// Close stops accepting records and blocks until in-flight writes finish
// or ctx is done. It can be called again to keep draining.
func (b *BestEffort) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
