package atm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
	"github.com/codewandler/csp-go/ports/ledger"
)

const waitTimeout = 2 * time.Second

// recorder is a stand-in actor that keeps every message it receives.
type recorder struct {
	rcv  *messaging.Receiver
	msgs chan any
	done chan struct{}

	mu  sync.Mutex
	all []any
}

func newRecorder(t *testing.T, id string) *recorder {
	t.Helper()
	r := &recorder{
		rcv:  messaging.NewReceiver(messaging.Options{ID: id}),
		msgs: make(chan any, 1024),
		done: make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		for {
			out, _ := r.rcv.Wait().Handle(messaging.On(func(m any) {
				r.mu.Lock()
				r.all = append(r.all, m)
				r.mu.Unlock()
				r.msgs <- m
			})).Run()
			if out == messaging.Closed {
				return
			}
		}
	}()
	t.Cleanup(func() { r.stop() })
	return r
}

func (r *recorder) Sender() messaging.Sender { return r.rcv.Sender() }

// stop closes the recorder and returns everything it received.
func (r *recorder) stop() []any {
	messaging.Close(r.rcv.Sender())
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.all...)
}

// expectMsg skips messages until one of type T arrives.
func expectMsg[T any](t *testing.T, r *recorder) T {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case m := <-r.msgs:
			if v, ok := m.(T); ok {
				return v
			}
		case <-timeout:
			var z T
			t.Fatalf("timeout waiting for %T on %s", z, r.rcv.ID())
			return z
		}
	}
}

func countOf[T any](msgs []any) (n int) {
	for _, m := range msgs {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

func pressDigits(s messaging.Sender, pin string) {
	for i := 0; i < len(pin); i++ {
		s.Send(DigitPressed{Digit: pin[i]})
	}
}

func balanceOf(t *testing.T, bank messaging.Sender, account string) uint64 {
	t.Helper()
	r := messaging.NewReceiver(messaging.Options{})
	bank.Send(GetBalance{Account: account, ReplyTo: r.Sender()})

	ctx, cancel := context.WithTimeout(t.Context(), waitTimeout)
	defer cancel()

	var b Balance
	out, err := r.Wait().Handle(messaging.On(func(m Balance) { b = m })).RunContext(ctx)
	require.NoError(t, err)
	require.Equal(t, messaging.Handled, out)
	return b.Amount
}

func requireState(t *testing.T, a *ATM, s State) {
	t.Helper()
	require.Eventually(t, func() bool { return a.State() == s }, waitTimeout, time.Millisecond,
		"want state %s, have %s", s, a.State())
}

type fixture struct {
	atm   *ATM
	bank  *Bank
	ui    *recorder
	store *ledger.MemStore
}

// startWithBank runs an ATM wired to a real bank and a recording UI.
func startWithBank(t *testing.T, accounts ...Account) *fixture {
	t.Helper()
	f := &fixture{
		ui:    newRecorder(t, "ui"),
		store: ledger.NewMemStore(),
	}
	f.bank = NewBank(BankOptions{Accounts: accounts, Store: f.store})
	f.atm = NewATM(ATMOptions{Bank: f.bank.Sender(), UI: f.ui.Sender()})

	sys := actor.NewSystem(actor.SystemOptions{})
	_, err := sys.Spawn("bank", f.bank.Sender(), f.bank)
	require.NoError(t, err)
	_, err = sys.Spawn("atm", f.atm.Sender(), f.atm)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		require.NoError(t, sys.Shutdown(ctx))
	})
	return f
}
