package audit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
)

// Record describes one authorization decision or privileged action
// attempt. Append-only; the gateway produces records and never reads
// them back.
type Record struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"`
	Roles    []string  `json:"roles"`
	Endpoint string    `json:"endpoint"`
	Method   string    `json:"method"`
	Action   string    `json:"action"`
	Outcome  Outcome   `json:"outcome"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// Sink receives audit records. The external logging pipeline owns the
// records after Write returns.
type Sink interface {
	Write(Record) error
}

// Emitter hands records to the sink off the request path. Record never
// blocks: when the buffer is full the record is dropped, counted and
// logged to the fallback logger instead of stalling a response.
type Emitter struct {
	sink    Sink
	logger  *zap.SugaredLogger
	records chan Record
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func NewEmitter(sink Sink, logger *zap.SugaredLogger, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &Emitter{
		sink:    sink,
		logger:  logger,
		records: make(chan Record, buffer),
		done:    make(chan struct{}),
	}
	go e.drain()
	return e
}

// Record queues one record for the sink. Missing ID and timestamp are
// filled in here so callers only supply what they know.
func (e *Emitter) Record(r Record) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.dropped.Add(1)
		e.logger.Warnw("audit record dropped, emitter closed",
			"identity", r.Identity,
			"action", r.Action,
			"outcome", r.Outcome,
		)
		return
	}

	select {
	case e.records <- r:
	default:
		e.dropped.Add(1)
		e.logger.Warnw("audit record dropped, buffer full",
			"identity", r.Identity,
			"action", r.Action,
			"outcome", r.Outcome,
		)
	}
}

// Dropped is the number of records lost to a full buffer since startup.
func (e *Emitter) Dropped() int64 {
	return e.dropped.Load()
}

// Close stops intake and waits for queued records to reach the sink.
// Records arriving after Close are dropped and counted like any other
// overflow; Close is safe to call more than once.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	e.mu.Unlock()

	close(e.records)
	<-e.done
}

func (e *Emitter) drain() {
	defer close(e.done)
	for r := range e.records {
		if err := e.sink.Write(r); err != nil {
			// Sink failures stay here; they never surface to the caller.
			e.logger.Errorw("audit sink write failed", "error", err, "record_id", r.ID)
		}
	}
}
