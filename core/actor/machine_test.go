package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/csp-go/core/messaging"
)

type turnstileState int

const (
	locked turnstileState = iota
	unlocked
	broken
)

func (s turnstileState) String() string {
	return [...]string{"locked", "unlocked", "broken"}[s]
}

type (
	coin  struct{}
	push  struct{}
	kick  struct{}
	entry struct{}
)

type turnstile struct {
	in     *messaging.Receiver
	events messaging.Sender
	coins  int
}

func (ts *turnstile) locked() (turnstileState, messaging.Outcome, error) {
	next := locked
	out, err := ts.in.Wait().
		Handle(messaging.On(func(coin) {
			ts.coins++
			next = unlocked
		})).
		Handle(messaging.OnErr(func(kick) error {
			next = broken
			return errors.New("kicked")
		})).
		Run()
	return next, out, err
}

func (ts *turnstile) unlocked() (turnstileState, messaging.Outcome, error) {
	next := unlocked
	out, err := ts.in.Wait().
		Handle(messaging.On(func(push) {
			ts.events.Send(entry{})
			next = locked
		})).
		Run()
	return next, out, err
}

func newTurnstile(t *testing.T) (*turnstile, *Machine[turnstileState], *messaging.Receiver) {
	events := messaging.NewReceiver(messaging.Options{})
	ts := &turnstile{in: messaging.NewReceiver(messaging.Options{}), events: events.Sender()}
	m := NewMachine(MachineOptions[turnstileState]{
		Name:    "turnstile",
		Initial: locked,
		States: map[turnstileState]StateFunc[turnstileState]{
			locked:   ts.locked,
			unlocked: ts.unlocked,
		},
	})
	return ts, m, events
}

func TestMachine_transitions(t *testing.T) {
	ts, m, events := newTurnstile(t)
	require.Equal(t, locked, m.Current())

	h, err := Spawn(Options{Name: "turnstile"}, m)
	require.NoError(t, err)

	in := ts.in.Sender()
	in.Send(push{}) // ignored while locked
	in.Send(coin{})
	require.Eventually(t, func() bool { return m.Current() == unlocked }, time.Second, time.Millisecond)

	in.Send(coin{}) // ignored while unlocked
	in.Send(push{})

	out, err := events.Wait().Handle(messaging.On(func(entry) {})).RunContext(t.Context())
	require.NoError(t, err)
	require.Equal(t, messaging.Handled, out)
	require.Eventually(t, func() bool { return m.Current() == locked }, time.Second, time.Millisecond)

	messaging.Close(in)
	require.NoError(t, h.Join())
	require.Equal(t, 1, ts.coins)
}

func TestMachine_unknownState(t *testing.T) {
	ts, m, _ := newTurnstile(t)
	ts.in.Sender().Send(kick{})

	err := m.Run()
	require.ErrorIs(t, err, ErrUnknownState)
	require.Equal(t, broken, m.Current())
}

type stateRecorder struct {
	nopMetrics
	states []string
}

func (r *stateRecorder) StateEntered(_ string, state string) { r.states = append(r.states, state) }

func TestMachine_reportsStates(t *testing.T) {
	ts := &turnstile{in: messaging.NewReceiver(messaging.Options{})}
	rec := &stateRecorder{}
	m := NewMachine(MachineOptions[turnstileState]{
		Initial: locked,
		States: map[turnstileState]StateFunc[turnstileState]{
			locked:   ts.locked,
			unlocked: ts.unlocked,
		},
		Metrics: rec,
	})

	in := ts.in.Sender()
	in.Send(coin{})
	in.Send(push{})
	messaging.Close(in)

	require.NoError(t, m.Run())
	require.Equal(t, []string{"locked", "unlocked", "locked"}, rec.states)
}

func TestMachine_noOutcome(t *testing.T) {
	m := NewMachine(MachineOptions[turnstileState]{
		Name:    "lazy",
		Initial: locked,
		States: map[turnstileState]StateFunc[turnstileState]{
			locked: func() (turnstileState, messaging.Outcome, error) {
				return unlocked, messaging.NotRun, nil
			},
		},
	})

	err := m.Run()
	require.ErrorIs(t, err, ErrNoOutcome)
	require.NotContains(t, err.Error(), "%!")
	require.Equal(t, locked, m.Current())
}
