package messaging

import (
	"context"
	"errors"
	"log/slog"
)

var (
	// ErrDispatcherUsed is returned when Run is called a second time on the
	// same Dispatcher. Call Receiver.Wait again instead.
	ErrDispatcherUsed = errors.New("dispatcher already ran")
	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("handler panicked")
)

// Outcome tells the caller of Dispatcher.Run how the wait ended.
type Outcome int

const (
	// NotRun is returned together with an error when the chain could not run.
	NotRun Outcome = iota
	// Handled means exactly one message was passed to a handler.
	Handled
	// Closed means the shutdown sentinel was received; no handler ran.
	Closed
	// Canceled means the context given to RunContext was done first.
	Canceled
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Closed:
		return "closed"
	case Canceled:
		return "canceled"
	default:
		return "not_run"
	}
}

// Case is one link of a dispatch chain: a message type and its handler.
// Build it with On or OnErr.
type Case struct {
	msgType string
	match   func(msg any) (call func() error, ok bool)
}

// MsgType returns the type tag the case was registered for.
func (c Case) MsgType() string { return c.msgType }

// On registers a handler for messages of type T. T may be an interface, in
// which case every message implementing it matches.
func On[T any](fn func(T)) Case {
	return OnErr(func(m T) error {
		fn(m)
		return nil
	})
}

// OnErr is like On for handlers that can fail. The error is returned from
// Dispatcher.Run; the message still counts as consumed.
func OnErr[T any](fn func(T) error) Case {
	return Case{
		msgType: MsgTypeFor[T](),
		match: func(msg any) (func() error, bool) {
			m, ok := msg.(T)
			if !ok {
				return nil, false
			}
			return func() error { return fn(m) }, true
		},
	}
}

// Dispatcher is a single-use chain of cases bound to a receiver. Cases are
// tried in the order they were added and the first match wins.
type Dispatcher struct {
	r     *Receiver
	cases []Case
	used  bool
}

// Handle appends cases to the chain and returns the dispatcher for chaining:
//
//	out, err := rcv.Wait().
//		Handle(messaging.On(func(m Ping) { ... })).
//		Handle(messaging.On(func(m Stop) { ... })).
//		Run()
func (d *Dispatcher) Handle(cases ...Case) *Dispatcher {
	d.cases = append(d.cases, cases...)
	return d
}

// Run blocks until one message has been handled or the shutdown sentinel
// arrives. Messages no case accepts are dropped.
func (d *Dispatcher) Run() (Outcome, error) {
	return d.RunContext(context.Background())
}

// RunContext is like Run but returns Canceled once ctx is done.
func (d *Dispatcher) RunContext(ctx context.Context) (Outcome, error) {
	if d.used {
		return NotRun, ErrDispatcherUsed
	}
	d.used = true

	for {
		env, err := d.r.q.PopContext(ctx)
		if err != nil {
			return Canceled, err
		}

		if env.IsClose() {
			d.r.log.Debug("received close")
			return Closed, nil
		}

		for _, c := range d.cases {
			call, ok := c.match(env.Msg)
			if !ok {
				continue
			}
			if d.r.log.Enabled(ctx, slog.LevelDebug) {
				d.r.log.Debug("dispatching message", slog.String("msg_type", env.Type), slog.String("case", c.msgType))
			}
			return Handled, d.r.invoke(env, call)
		}

		d.r.drop(env)
	}
}
