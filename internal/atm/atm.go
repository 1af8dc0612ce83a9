package atm

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
)

const DefaultPinLength = 4

type ATMOptions struct {
	ID        string
	PinLength int
	// Bank and UI address the collaborators. Either may be the zero Sender,
	// in which case messages to it are dropped.
	Bank      messaging.Sender
	UI        messaging.Sender
	Logger    *slog.Logger
	Messaging messaging.Metrics
	Metrics   actor.Metrics
}

// ATM is the controller actor. It talks to the card reader and keyboard
// through its own queue, to the bank through request/reply messages and to
// the UI through display commands.
type ATM struct {
	incoming  *messaging.Receiver
	bank      messaging.Sender
	ui        messaging.Sender
	pinLength int
	log       *slog.Logger
	machine   *actor.Machine[State]

	// session fields, reset in Done
	session *slog.Logger
	account string
	pin     []byte
	amount  uint64
}

func NewATM(opt ATMOptions) *ATM {
	if opt.ID == "" {
		opt.ID = "atm"
	}
	if opt.PinLength <= 0 {
		opt.PinLength = DefaultPinLength
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	log := opt.Logger.With(slog.String("actor", opt.ID))

	a := &ATM{
		incoming: messaging.NewReceiver(messaging.Options{
			ID:      opt.ID,
			Logger:  opt.Logger,
			Metrics: opt.Messaging,
		}),
		bank:      opt.Bank,
		ui:        opt.UI,
		pinLength: opt.PinLength,
		log:       log,
		session:   log,
	}
	a.machine = actor.NewMachine(actor.MachineOptions[State]{
		Name:    opt.ID,
		Initial: WaitingForCard,
		States: map[State]actor.StateFunc[State]{
			WaitingForCard:            a.waitingForCard,
			GettingPin:                a.gettingPin,
			WaitingForPinVerification: a.waitingForPinVerification,
			WaitingForWithdrawChoice:  a.waitingForWithdrawChoice,
			WaitingForWithdrawResult:  a.waitingForWithdrawResult,
			WaitingForBalance:         a.waitingForBalance,
			Done:                      a.done,
		},
		Logger:  log,
		Metrics: opt.Metrics,
	})
	return a
}

// Sender addresses the ATM's input queue.
func (a *ATM) Sender() messaging.Sender { return a.incoming.Sender() }

// State reports the state the ATM is in or waiting in.
func (a *ATM) State() State { return a.machine.Current() }

// Run processes input until Close is called.
func (a *ATM) Run() error { return a.machine.Run() }

// Close asks the ATM to stop. It does not wait.
func (a *ATM) Close() { messaging.Close(a.Sender()) }

func (a *ATM) display(m Message) { a.ui.Send(m) }

func (a *ATM) waitingForCard() (State, messaging.Outcome, error) {
	a.display(DisplayEnterCard{})

	next := WaitingForCard
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(m CardInserted) {
			a.account = m.Account
			a.pin = a.pin[:0]
			a.session = a.log.With(
				slog.String("session", uuid.NewString()),
				slog.String("account", m.Account),
			)
			a.session.Info("card inserted")
			a.display(DisplayEnterPin{})
			next = GettingPin
		})).
		Run()
	return next, out, err
}

func (a *ATM) gettingPin() (State, messaging.Outcome, error) {
	next := GettingPin
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(m DigitPressed) {
			if m.Digit < '0' || m.Digit > '9' {
				a.session.Warn("ignoring non-digit key", slog.Int("key", int(m.Digit)))
				return
			}
			a.pin = append(a.pin, m.Digit)
			if len(a.pin) < a.pinLength {
				return
			}
			a.bank.Send(VerifyPin{
				Account: a.account,
				Pin:     string(a.pin),
				ReplyTo: a.incoming.Sender(),
			})
			next = WaitingForPinVerification
		})).
		Handle(messaging.On(func(CancelPressed) {
			next = Done
		})).
		Run()
	return next, out, err
}

func (a *ATM) waitingForPinVerification() (State, messaging.Outcome, error) {
	next := WaitingForPinVerification
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(PinVerified) {
			a.session.Info("pin verified")
			a.display(DisplayWithdrawalOptions{})
			next = WaitingForWithdrawChoice
		})).
		Handle(messaging.On(func(PinIncorrect) {
			a.session.Info("pin incorrect")
			a.display(DisplayPinIncorrect{})
			next = Done
		})).
		Run()
	return next, out, err
}

func (a *ATM) waitingForWithdrawChoice() (State, messaging.Outcome, error) {
	next := WaitingForWithdrawChoice
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(m WithdrawPressed) {
			a.amount = m.Amount
			a.bank.Send(RequestWithdraw{
				Account: a.account,
				Amount:  m.Amount,
				ReplyTo: a.incoming.Sender(),
			})
			next = WaitingForWithdrawResult
		})).
		Handle(messaging.On(func(BalancePressed) {
			a.bank.Send(GetBalance{Account: a.account, ReplyTo: a.incoming.Sender()})
			next = WaitingForBalance
		})).
		Handle(messaging.On(func(CancelPressed) {
			a.display(DisplayWithdrawalCanceled{})
			next = Done
		})).
		Run()
	return next, out, err
}

func (a *ATM) waitingForWithdrawResult() (State, messaging.Outcome, error) {
	next := WaitingForWithdrawResult
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(WithdrawSuccess) {
			a.session.Info("withdrawal approved", slog.Uint64("amount", a.amount))
			a.display(IssueMoney{Amount: a.amount})
			a.bank.Send(CompleteWithdraw{Account: a.account, Amount: a.amount})
			a.display(DisplayWithdrawalOptions{})
			next = WaitingForWithdrawChoice
		})).
		Handle(messaging.On(func(WithdrawDenied) {
			a.session.Info("withdrawal denied", slog.Uint64("amount", a.amount))
			a.display(DisplayInsufficientFunds{})
			next = Done
		})).
		Run()
	return next, out, err
}

func (a *ATM) waitingForBalance() (State, messaging.Outcome, error) {
	next := WaitingForBalance
	out, err := a.incoming.Wait().
		Handle(messaging.On(func(m Balance) {
			a.display(DisplayBalance{Amount: m.Amount})
			a.display(DisplayWithdrawalOptions{})
			next = WaitingForWithdrawChoice
		})).
		Run()
	return next, out, err
}

// done ends the session without waiting for a message.
func (a *ATM) done() (State, messaging.Outcome, error) {
	a.display(EjectCard{})
	a.session.Info("session finished")

	a.session = a.log
	a.account = ""
	a.pin = a.pin[:0]
	a.amount = 0
	return WaitingForCard, messaging.Handled, nil
}
