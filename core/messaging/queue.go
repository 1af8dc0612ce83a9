package messaging

import (
	"context"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Options configures a Queue or a Receiver.
type Options struct {
	// ID identifies the queue in logs and metrics. Defaults to "q-<nanoid>".
	ID      string
	Logger  *slog.Logger
	Metrics Metrics
	// OnPanic is called when a handler panics. Defaults to logging at error level.
	OnPanic OnPanic
}

// OnPanic receives the recovered value, the goroutine stack and the message
// whose handler panicked.
type OnPanic func(recovered any, stack []byte, msg any)

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = "q-" + gonanoid.Must(8)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics()
	}
	if o.OnPanic == nil {
		log := o.Logger
		o.OnPanic = func(recovered any, stack []byte, msg any) {
			log.Error("handler panicked",
				slog.Any("recovered", recovered),
				slog.String("stack", string(stack)),
				slog.String("msg_type", MsgTypeOf(msg)),
			)
		}
	}
	return o
}

// Queue is an unbounded FIFO of envelopes. Any number of goroutines may
// push; exactly one logical consumer pops.
type Queue struct {
	id      string
	metrics Metrics

	mu    sync.Mutex
	cond  *sync.Cond
	items []Envelope
}

// NewQueue creates an empty queue.
func NewQueue(opt Options) *Queue {
	opt = opt.withDefaults()
	q := &Queue{id: opt.ID, metrics: opt.Metrics}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) ID() string { return q.id }

// Push appends env. It never blocks on capacity and never fails.
func (q *Queue) Push(env Envelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.metrics.QueueDepth(q.id, len(q.items))
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Pop blocks until an envelope is available and removes the oldest one.
func (q *Queue) Pop() Envelope {
	q.mu.Lock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	env := q.shift()
	q.mu.Unlock()
	return env
}

// PopContext is like Pop but gives up when ctx is done.
func (q *Queue) PopContext(ctx context.Context) (Envelope, error) {
	if ctx.Done() == nil {
		return q.Pop(), nil
	}

	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	for len(q.items) == 0 {
		if err := ctx.Err(); err != nil {
			q.mu.Unlock()
			return Envelope{}, err
		}
		q.cond.Wait()
	}
	env := q.shift()
	q.mu.Unlock()
	return env, nil
}

// TryPop removes the oldest envelope if there is one.
func (q *Queue) TryPop() (Envelope, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return Envelope{}, false
	}
	env := q.shift()
	q.mu.Unlock()
	return env, true
}

// Len returns the number of waiting envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// shift must be called with q.mu held and a non-empty queue. The depth is
// reported under the lock so the last report matches the final length.
func (q *Queue) shift() Envelope {
	env := q.items[0]
	q.items[0] = Envelope{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// drop the drained backing array
		q.items = nil
	}
	q.metrics.QueueDepth(q.id, len(q.items))
	return env
}
