package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountkit/user-api/internal/core/domain"
	"github.com/accountkit/user-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	maxAttempts    = 3
	retryBackoff   = 100 * time.Millisecond
)

// Outcomes reported to the observer.
const (
	OutcomeRecorded = "recorded"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
)

// Dispatcher fans account events out to a fixed set of workers sharded by
// user id, so one user's events are recorded in the order they happened.
type Dispatcher struct {
	workers  []chan domain.AccountEvent
	recorder ports.EventRecorder
	observe  func(outcome string)
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithObserver registers fn to be called with the outcome of every event.
func WithObserver(fn func(outcome string)) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.observe = fn
		}
	}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.EventRecorder, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AccountEvent, numWorkers),
		recorder: recorder,
		observe:  func(string) {},
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccountEvent, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. They drain their buffers and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish implements ports.EventPublisher. It never blocks: when the
// worker's buffer is full the event is dropped and logged.
func (d *Dispatcher) Publish(event domain.AccountEvent) {
	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
	default:
		d.observe(OutcomeDropped)
		d.log.Warn().
			Str("event_id", event.ID).
			Int64("user_id", event.UserID).
			Str("kind", string(event.Kind)).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(userID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.record(ctx, id, event)
		}
	}
}

// drain records whatever is still buffered using a fresh context, since the
// worker context is already cancelled.
func (d *Dispatcher) drain(id int, ch <-chan domain.AccountEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.record(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, event domain.AccountEvent) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = d.recorder.Record(ctx, event); err == nil {
			d.observe(OutcomeRecorded)
			return
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}

	d.observe(OutcomeFailed)
	d.log.Error().Err(err).
		Str("event_id", event.ID).
		Int64("user_id", event.UserID).
		Int("worker_id", id).
		Msg("audit event recording failed")
}
