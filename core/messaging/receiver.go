package messaging

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// noCopy makes go vet's copylocks check flag copies of a Receiver.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Receiver owns a queue. It is not copyable; pass it by pointer and hand
// out Senders instead.
type Receiver struct {
	noCopy noCopy

	q       *Queue
	log     *slog.Logger
	metrics Metrics
	onPanic OnPanic
}

// NewReceiver creates a receiver with its own queue.
func NewReceiver(opt Options) *Receiver {
	opt = opt.withDefaults()
	return &Receiver{
		q:       NewQueue(opt),
		log:     opt.Logger.With(slog.String("queue", opt.ID)),
		metrics: opt.Metrics,
		onPanic: opt.OnPanic,
	}
}

func (r *Receiver) ID() string { return r.q.id }

// Len returns the number of messages waiting.
func (r *Receiver) Len() int { return r.q.Len() }

// Sender returns a handle addressing this receiver's queue.
func (r *Receiver) Sender() Sender { return Sender{q: r.q} }

// Wait starts a new dispatch chain. Nothing is consumed until Run is called
// on the returned Dispatcher.
func (r *Receiver) Wait() *Dispatcher {
	return &Dispatcher{r: r}
}

func (r *Receiver) drop(env Envelope) {
	r.metrics.MessageDropped(r.q.id, env.Type)
	r.log.Debug("dropping unmatched message", slog.String("msg_type", env.Type))
}

// invoke runs a matched handler with panic containment.
func (r *Receiver) invoke(env Envelope, call func() error) (err error) {
	defer r.metrics.MessageDuration(env.Type).ObserveDuration()
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.MessagePanic(env.Type)
			r.onPanic(rec, debug.Stack(), env.Msg)
			err = fmt.Errorf("%w: msg_type=%s: %v", ErrHandlerPanic, env.Type, rec)
		}
		r.metrics.MessageProcessed(env.Type, err == nil)
	}()
	return call()
}
