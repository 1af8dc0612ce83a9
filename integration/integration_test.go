package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/csp-go/adapters/nats"
	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
	"github.com/codewandler/csp-go/internal/atm"
)

const timeout = 5 * time.Second

var card = atm.Account{ID: "acc1234", Pin: "1234", Balance: 99}

// display collects everything the ATM sends to its UI.
func display(t *testing.T) (messaging.Sender, <-chan atm.Message) {
	t.Helper()
	rcv := messaging.NewReceiver(messaging.Options{ID: "ui"})
	ch := make(chan atm.Message, 64)
	h, err := actor.Spawn(actor.Options{Name: "ui"}, actor.RunFunc(func() error {
		for {
			out, err := rcv.Wait().Handle(messaging.On(func(m atm.Message) { ch <- m })).Run()
			if out == messaging.Closed {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}))
	require.NoError(t, err)
	t.Cleanup(func() {
		messaging.Close(rcv.Sender())
		require.NoError(t, h.Join())
	})
	return rcv.Sender(), ch
}

func await[T atm.Message](t *testing.T, ch <-chan atm.Message) T {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case m := <-ch:
			if v, ok := m.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timeout waiting for %T", zero)
			return zero
		}
	}
}

func shutdown(t *testing.T, sys *actor.System) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, sys.Shutdown(ctx))
}

func TestIntegration_balanceSurvivesRestart(t *testing.T) {
	store, err := nats.NewLedgerStore(t.Context(), nats.LedgerConfig{
		Connect: nats.ReuseConnection(nats.NewTestContainer(t)),
		Bucket:  "integration",
	})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	ui, screen := display(t)

	bank := atm.NewBank(atm.BankOptions{Accounts: []atm.Account{card}, Store: store})
	machine := atm.NewATM(atm.ATMOptions{Bank: bank.Sender(), UI: ui})

	sys := actor.NewSystem(actor.SystemOptions{})
	_, err = sys.Spawn("bank", bank.Sender(), bank)
	require.NoError(t, err)
	_, err = sys.Spawn("atm", machine.Sender(), machine)
	require.NoError(t, err)

	in := machine.Sender()
	await[atm.DisplayEnterCard](t, screen)
	in.Send(atm.CardInserted{Account: card.ID})
	for _, d := range []byte(card.Pin) {
		in.Send(atm.DigitPressed{Digit: d})
	}
	await[atm.DisplayWithdrawalOptions](t, screen)

	in.Send(atm.WithdrawPressed{Amount: 50})
	require.Equal(t, atm.IssueMoney{Amount: 50}, await[atm.IssueMoney](t, screen))
	await[atm.DisplayWithdrawalOptions](t, screen)

	in.Send(atm.CancelPressed{})
	await[atm.EjectCard](t, screen)
	shutdown(t, sys)

	// a fresh bank seeded with the old balance must pick up the stored one
	restarted := atm.NewBank(atm.BankOptions{Accounts: []atm.Account{card}, Store: store})
	sys = actor.NewSystem(actor.SystemOptions{})
	_, err = sys.Spawn("bank", restarted.Sender(), restarted)
	require.NoError(t, err)
	defer shutdown(t, sys)

	reply := messaging.NewReceiver(messaging.Options{ID: "reply"})
	restarted.Sender().Send(atm.GetBalance{Account: card.ID, ReplyTo: reply.Sender()})

	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	defer cancel()
	var balance uint64
	out, err := reply.Wait().Handle(messaging.On(func(m atm.Balance) { balance = m.Amount })).RunContext(ctx)
	require.NoError(t, err)
	require.Equal(t, messaging.Handled, out)
	require.Equal(t, uint64(49), balance)
}
