package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/codewandler/csp-go/core/messaging"
)

var (
	ErrDuplicateName = errors.New("actor: name already registered")
	ErrNotFound      = errors.New("actor: not found")
)

type (
	SystemOptions struct {
		Logger  *slog.Logger
		Metrics Metrics
	}

	member struct {
		handle *Handle
		inbox  messaging.Sender
	}
)

// System keeps track of named actors so they can be stopped together. It
// stops an actor by sending the shutdown sentinel to its inbox and joining
// its goroutine.
type System struct {
	log     *slog.Logger
	metrics Metrics
	members *xsync.MapOf[string, member]
}

func NewSystem(opt SystemOptions) *System {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}
	return &System{
		log:     opt.Logger,
		metrics: opt.Metrics,
		members: xsync.NewMapOf[string, member](),
	}
}

// Spawn starts r under name. inbox must address the queue r receives from.
func (s *System) Spawn(name string, inbox messaging.Sender, r Runnable) (*Handle, error) {
	if name == "" {
		return nil, fmt.Errorf("spawn: empty name")
	}
	if _, ok := s.members.Load(name); ok {
		return nil, fmt.Errorf("spawn %s: %w", name, ErrDuplicateName)
	}

	h, err := Spawn(Options{Name: name, Logger: s.log, Metrics: s.metrics}, r)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	if _, loaded := s.members.LoadOrStore(name, member{handle: h, inbox: inbox}); loaded {
		// lost a race against a concurrent Spawn with the same name
		messaging.Close(inbox)
		_ = h.Join()
		return nil, fmt.Errorf("spawn %s: %w", name, ErrDuplicateName)
	}
	return h, nil
}

// Stop closes the named actor's inbox and waits for it to return.
func (s *System) Stop(ctx context.Context, name string) error {
	m, ok := s.members.LoadAndDelete(name)
	if !ok {
		return fmt.Errorf("stop %s: %w", name, ErrNotFound)
	}
	messaging.Close(m.inbox)
	return m.handle.JoinContext(ctx)
}

// Names lists the registered actors in lexical order.
func (s *System) Names() []string {
	names := make([]string, 0, s.members.Size())
	s.members.Range(func(name string, _ member) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Shutdown closes every registered actor and waits for all of them.
func (s *System) Shutdown(ctx context.Context) error {
	var errs []error
	names := s.Names()
	s.log.Info("shutting down actors", slog.Int("count", len(names)))

	for _, name := range names {
		if m, ok := s.members.Load(name); ok {
			messaging.Close(m.inbox)
		}
	}
	for _, name := range names {
		m, ok := s.members.LoadAndDelete(name)
		if !ok {
			continue
		}
		if err := m.handle.JoinContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
