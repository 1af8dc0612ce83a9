package atm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/ports/ledger"
)

func startBank(t *testing.T, opt BankOptions) *Bank {
	t.Helper()
	b := NewBank(opt)
	h, err := actor.Spawn(actor.Options{Name: "bank"}, b)
	require.NoError(t, err)
	t.Cleanup(func() {
		b.Close()
		require.NoError(t, h.Join())
	})
	return b
}

func TestBank_verifyPin(t *testing.T) {
	b := startBank(t, BankOptions{Accounts: []Account{{ID: "acc1", Pin: "1234"}, {ID: "acc2", Pin: "0000"}}})
	atm := newRecorder(t, "atm")

	b.Sender().Send(VerifyPin{Account: "acc1", Pin: "1234", ReplyTo: atm.Sender()})
	expectMsg[PinVerified](t, atm)

	b.Sender().Send(VerifyPin{Account: "acc1", Pin: "0000", ReplyTo: atm.Sender()})
	expectMsg[PinIncorrect](t, atm)

	b.Sender().Send(VerifyPin{Account: "nobody", Pin: "1234", ReplyTo: atm.Sender()})
	expectMsg[PinIncorrect](t, atm)
}

func TestBank_withdraw(t *testing.T) {
	b := startBank(t, BankOptions{Accounts: []Account{{ID: "acc1", Pin: "1234", Balance: 60}}})
	atm := newRecorder(t, "atm")

	b.Sender().Send(RequestWithdraw{Account: "acc1", Amount: 50, ReplyTo: atm.Sender()})
	expectMsg[WithdrawSuccess](t, atm)
	// approving does not move money
	require.Equal(t, uint64(60), balanceOf(t, b.Sender(), "acc1"))

	b.Sender().Send(CompleteWithdraw{Account: "acc1", Amount: 50})
	require.Equal(t, uint64(10), balanceOf(t, b.Sender(), "acc1"))

	b.Sender().Send(RequestWithdraw{Account: "acc1", Amount: 11, ReplyTo: atm.Sender()})
	expectMsg[WithdrawDenied](t, atm)

	b.Sender().Send(RequestWithdraw{Account: "nobody", Amount: 1, ReplyTo: atm.Sender()})
	expectMsg[WithdrawDenied](t, atm)

	// completing more than the balance is refused and the bank keeps serving
	b.Sender().Send(CompleteWithdraw{Account: "acc1", Amount: 11})
	b.Sender().Send(CompleteWithdraw{Account: "nobody", Amount: 1})
	require.Equal(t, uint64(10), balanceOf(t, b.Sender(), "acc1"))
	require.Equal(t, uint64(0), balanceOf(t, b.Sender(), "nobody"))
}

func TestBank_restoresFromStore(t *testing.T) {
	store := ledger.NewMemStore(ledger.Entry{Account: "acc1", Balance: 7})
	b := startBank(t, BankOptions{
		Accounts: []Account{{ID: "acc1", Pin: "1234", Balance: 100}, {ID: "acc2", Pin: "1234", Balance: 5}},
		Store:    store,
	})
	require.Equal(t, uint64(7), balanceOf(t, b.Sender(), "acc1"))
	require.Equal(t, uint64(5), balanceOf(t, b.Sender(), "acc2"))

	b.Sender().Send(CompleteWithdraw{Account: "acc2", Amount: 5})
	require.Equal(t, uint64(0), balanceOf(t, b.Sender(), "acc2"))

	e, err := store.Get(t.Context(), "acc2")
	require.NoError(t, err)
	require.Equal(t, uint64(0), e.Balance)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (ledger.Entry, error) {
	return ledger.Entry{}, f.err
}
func (f failingStore) Put(context.Context, ledger.Entry) error { return f.err }

func TestBank_restoreFailure(t *testing.T) {
	b := NewBank(BankOptions{
		Accounts: []Account{{ID: "acc1", Pin: "1234"}},
		Store:    failingStore{err: errors.New("store down")},
	})
	require.ErrorContains(t, b.Run(), "store down")
}

func TestBank_persistFailure(t *testing.T) {
	b := NewBank(BankOptions{Accounts: []Account{{ID: "acc1", Pin: "1234", Balance: 9}}})
	b.store = failingStore{err: errors.New("store down")}

	err := b.completeWithdraw(CompleteWithdraw{Account: "acc1", Amount: 4})
	require.ErrorContains(t, err, "store down")
	require.Equal(t, uint64(5), b.accounts["acc1"].balance)
}

func TestDigestPin(t *testing.T) {
	d := digestPin("acc1", "1234")
	require.True(t, d.matches("acc1", "1234"))
	require.False(t, d.matches("acc1", "1235"))
	require.False(t, d.matches("acc2", "1234"))
	require.NotEqual(t, digestPin("acc1", "1234"), digestPin("acc2", "1234"))
}
