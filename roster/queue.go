package roster

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ariebrainware/clinic-admin/util"
	"github.com/rs/zerolog"
)

// SerialUpdater writes a corrected serial to the backend.
type SerialUpdater interface {
	UpdatePatientSerial(ctx context.Context, patientID string, serial int) error
}

// QueueConfig sizes the repair queue. Zero values fall back to 4 workers, 256 slots and 10s.
type QueueConfig struct {
	Workers int
	Size    int
	Timeout time.Duration
}

// Stats are cumulative counters of a Queue.
type Stats struct {
	Submitted int64 `json:"submitted"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Queue delivers repairs in the background. Each repair is attempted once on its own
// context with a timeout; failures are logged and counted and never retried, since the
// next load of the roster recomputes every serial anyway.
type Queue struct {
	updater SerialUpdater
	timeout time.Duration
	jobs    chan Repair
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewQueue starts the workers.
func NewQueue(updater SerialUpdater, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	q := &Queue{
		updater: updater,
		timeout: cfg.Timeout,
		jobs:    make(chan Repair, cfg.Size),
	}
	q.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go q.work()
	}
	return q
}

// Submit enqueues r without blocking. It returns false when the queue is full or closed;
// the repair is then dropped.
func (q *Queue) Submit(r Repair) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return false
	}
	select {
	case q.jobs <- r:
		q.submitted.Add(1)
		return true
	default:
		q.dropped.Add(1)
		logger().Warn().Str("patient_id", r.PatientID).Int("serial", r.To).Msg("repair queue full, dropping serial repair")
		return false
	}
}

// Close stops accepting repairs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) Stats() Stats {
	return Stats{
		Submitted: q.submitted.Load(),
		Succeeded: q.succeeded.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for r := range q.jobs {
		q.apply(r)
	}
}

func (q *Queue) apply(r Repair) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.updater.UpdatePatientSerial(ctx, r.PatientID, r.To); err != nil {
		q.failed.Add(1)
		logger().Error().Err(err).
			Str("patient_id", r.PatientID).
			Int("from", r.From).
			Int("to", r.To).
			Msg("serial repair failed")
		return
	}
	q.succeeded.Add(1)
	logger().Debug().Str("patient_id", r.PatientID).Int("from", r.From).Int("to", r.To).Msg("serial repaired")
}

func logger() *zerolog.Logger {
	l := util.Logger().With().Str("component", "roster").Logger()
	return &l
}
