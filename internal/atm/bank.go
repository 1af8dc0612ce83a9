package atm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
	"github.com/codewandler/csp-go/ports/ledger"
)

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type (
	// Account seeds the bank. Pin is only kept as a digest.
	Account struct {
		ID      string
		Pin     string
		Balance uint64
	}

	BankOptions struct {
		ID       string
		Accounts []Account
		// Store, if set, supplies balances on start-up and receives every
		// balance change.
		Store        ledger.Store
		StoreTimeout time.Duration
		Logger       *slog.Logger
		Messaging    messaging.Metrics
		Metrics      actor.Metrics
	}

	account struct {
		pin     pinDigest
		balance uint64
	}
)

type bankState int

const listening bankState = 0

func (bankState) String() string { return "listening" }

// Bank verifies pins and owns the balances. Every request carries the
// address to reply to.
type Bank struct {
	incoming     *messaging.Receiver
	accounts     map[string]*account
	store        ledger.Store
	storeTimeout time.Duration
	log          *slog.Logger
	machine      *actor.Machine[bankState]
}

func NewBank(opt BankOptions) *Bank {
	if opt.ID == "" {
		opt.ID = "bank"
	}
	if opt.StoreTimeout <= 0 {
		opt.StoreTimeout = 5 * time.Second
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	log := opt.Logger.With(slog.String("actor", opt.ID))

	b := &Bank{
		incoming: messaging.NewReceiver(messaging.Options{
			ID:      opt.ID,
			Logger:  opt.Logger,
			Metrics: opt.Messaging,
		}),
		accounts:     make(map[string]*account, len(opt.Accounts)),
		store:        opt.Store,
		storeTimeout: opt.StoreTimeout,
		log:          log,
	}
	for _, acc := range opt.Accounts {
		b.accounts[acc.ID] = &account{pin: digestPin(acc.ID, acc.Pin), balance: acc.Balance}
	}
	b.machine = actor.NewMachine(actor.MachineOptions[bankState]{
		Name:    opt.ID,
		Initial: listening,
		States:  map[bankState]actor.StateFunc[bankState]{listening: b.listen},
		Logger:  log,
		Metrics: opt.Metrics,
	})
	return b
}

func (b *Bank) Sender() messaging.Sender { return b.incoming.Sender() }

// Close asks the bank to stop. It does not wait.
func (b *Bank) Close() { messaging.Close(b.Sender()) }

// Run loads balances from the store, if any, and serves requests until Close.
func (b *Bank) Run() error {
	if err := b.restore(); err != nil {
		return err
	}
	return b.machine.Run()
}

func (b *Bank) restore() error {
	if b.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.storeTimeout)
	defer cancel()

	for id, acc := range b.accounts {
		e, err := b.store.Get(ctx, id)
		if errors.Is(err, ledger.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore balance of %s: %w", id, err)
		}
		acc.balance = e.Balance
		b.log.Debug("restored balance", slog.String("account", id), slog.Uint64("balance", e.Balance))
	}
	return nil
}

func (b *Bank) listen() (bankState, messaging.Outcome, error) {
	out, err := b.incoming.Wait().
		Handle(messaging.On(b.verifyPin)).
		Handle(messaging.On(b.requestWithdraw)).
		Handle(messaging.OnErr(b.completeWithdraw)).
		Handle(messaging.On(b.getBalance)).
		Run()
	return listening, out, err
}

func (b *Bank) verifyPin(m VerifyPin) {
	acc, ok := b.accounts[m.Account]
	if ok && acc.pin.matches(m.Account, m.Pin) {
		m.ReplyTo.Send(PinVerified{})
		return
	}
	b.log.Info("pin rejected", slog.String("account", m.Account), slog.Bool("known", ok))
	m.ReplyTo.Send(PinIncorrect{})
}

// requestWithdraw only checks the funds; the balance changes on
// CompleteWithdraw, once the money was issued.
func (b *Bank) requestWithdraw(m RequestWithdraw) {
	acc, ok := b.accounts[m.Account]
	if !ok || acc.balance < m.Amount {
		m.ReplyTo.Send(WithdrawDenied{})
		return
	}
	m.ReplyTo.Send(WithdrawSuccess{})
}

func (b *Bank) completeWithdraw(m CompleteWithdraw) error {
	acc, ok := b.accounts[m.Account]
	if !ok {
		return fmt.Errorf("complete withdraw: %w: %s", ErrUnknownAccount, m.Account)
	}
	if acc.balance < m.Amount {
		return fmt.Errorf("complete withdraw of %d from %s: %w", m.Amount, m.Account, ErrInsufficientFunds)
	}
	acc.balance -= m.Amount
	b.log.Info("withdraw completed", slog.String("account", m.Account), slog.Uint64("amount", m.Amount), slog.Uint64("balance", acc.balance))

	if b.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.storeTimeout)
	defer cancel()
	err := b.store.Put(ctx, ledger.Entry{Account: m.Account, Balance: acc.balance, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("persist balance of %s: %w", m.Account, err)
	}
	return nil
}

func (b *Bank) getBalance(m GetBalance) {
	acc, ok := b.accounts[m.Account]
	if !ok {
		m.ReplyTo.Send(Balance{})
		return
	}
	m.ReplyTo.Send(Balance{Amount: acc.balance})
}
