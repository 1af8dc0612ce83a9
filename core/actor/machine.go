package actor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/codewandler/csp-go/core/messaging"
)

var (
	// ErrUnknownState is returned by Machine.Run when a state has no function.
	ErrUnknownState = errors.New("actor: unknown state")
	// ErrNoOutcome is returned when a state function reports messaging.NotRun
	// without an error.
	ErrNoOutcome = errors.New("actor: state returned no outcome")
)

type (
	// StateFunc runs one state: it normally builds a dispatch chain for the
	// messages valid in that state, runs it, and returns the next state.
	// States that do not wait for a message return messaging.Handled.
	StateFunc[S comparable] func() (next S, out messaging.Outcome, err error)

	MachineOptions[S comparable] struct {
		Name    string
		Initial S
		States  map[S]StateFunc[S]
		Logger  *slog.Logger
		Metrics Metrics
	}
)

// Machine drives a table of state functions until the shutdown sentinel is
// observed. It implements Runnable.
type Machine[S comparable] struct {
	name    string
	initial S
	states  map[S]StateFunc[S]
	log     *slog.Logger
	metrics Metrics

	current atomic.Pointer[S]
}

func NewMachine[S comparable](opt MachineOptions[S]) *Machine[S] {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}
	m := &Machine[S]{
		name:    opt.Name,
		initial: opt.Initial,
		states:  opt.States,
		log:     opt.Logger,
		metrics: opt.Metrics,
	}
	m.setCurrent(opt.Initial)
	return m
}

// Current returns the state the machine is in or waiting in.
func (m *Machine[S]) Current() S { return *m.current.Load() }

func (m *Machine[S]) setCurrent(s S) { m.current.Store(&s) }

// Run executes states until one reports messaging.Closed. Handler errors are
// logged and the machine moves on to the state the handler chose.
func (m *Machine[S]) Run() error {
	state := m.initial
	for {
		m.setCurrent(state)
		m.metrics.StateEntered(m.name, fmt.Sprint(state))

		f, ok := m.states[state]
		if !ok {
			return fmt.Errorf("%w: %v", ErrUnknownState, state)
		}

		next, out, err := f()
		switch out {
		case messaging.Closed:
			m.log.Debug("machine closed", slog.Any("state", state))
			return nil
		case messaging.Canceled, messaging.NotRun:
			if err == nil {
				return fmt.Errorf("%w: %v", ErrNoOutcome, state)
			}
			return fmt.Errorf("state %v: %w", state, err)
		}
		if err != nil {
			m.log.Error("state handler failed", slog.Any("state", state), slog.Any("error", err))
		}

		if next != state {
			m.log.Debug("transition", slog.Any("from", state), slog.Any("to", next))
		}
		state = next
	}
}
