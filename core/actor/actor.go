package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNilRunnable = errors.New("actor: nil runnable")
	ErrActorPanic  = errors.New("actor: run panicked")
)

type (
	// Runnable is the body of an actor. Run returns when the actor has seen
	// its shutdown sentinel, or with an error.
	Runnable interface {
		Run() error
	}

	// RunFunc adapts a function to Runnable.
	RunFunc func() error

	Options struct {
		// Name identifies the actor in logs and metrics. Defaults to "actor-<nanoid>".
		Name    string
		Logger  *slog.Logger
		Metrics Metrics
	}
)

func (f RunFunc) Run() error { return f() }

// Handle tracks one running actor goroutine.
type Handle struct {
	name string
	done chan struct{}
	err  error

	joined  atomic.Bool
	guarded atomic.Bool
}

// Spawn runs r on its own goroutine.
func Spawn(opt Options, r Runnable) (*Handle, error) {
	if r == nil {
		return nil, ErrNilRunnable
	}
	if opt.Name == "" {
		opt.Name = "actor-" + gonanoid.Must(8)
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}

	h := &Handle{name: opt.Name, done: make(chan struct{})}
	log := opt.Logger.With(slog.String("actor", opt.Name))

	opt.Metrics.ActorStarted(opt.Name)
	log.Debug("actor started")

	go func() {
		defer close(h.done)
		h.err = run(r)
		opt.Metrics.ActorStopped(opt.Name, h.err)
		if h.err != nil {
			log.Error("actor stopped", slog.Any("error", h.err))
			return
		}
		log.Debug("actor stopped")
	}()

	return h, nil
}

func run(r Runnable) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrActorPanic, rec, debug.Stack())
		}
	}()
	return r.Run()
}

func (h *Handle) Name() string { return h.name }

// Done is closed when the actor goroutine has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Join waits for the actor to return and yields its error. It may be called
// more than once.
func (h *Handle) Join() error {
	<-h.done
	h.joined.Store(true)
	return h.err
}

// JoinContext is like Join but stops waiting when ctx is done.
func (h *Handle) JoinContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("join %s: %w", h.name, ctx.Err())
	case <-h.done:
		return h.Join()
	}
}

// Joinable reports whether the handle has not been joined yet.
func (h *Handle) Joinable() bool { return h != nil && !h.joined.Load() }
