package atm

import "github.com/codewandler/csp-go/core/messaging"

// Message is the closed set of values exchanged between the ATM, the bank and
// the UI. Only types in this package can implement it.
type Message interface {
	atmMessage()
}

// Keyboard and card reader input, sent to the ATM.
type (
	CardInserted struct {
		Account string
	}
	DigitPressed struct {
		Digit byte
	}
	CancelPressed   struct{}
	WithdrawPressed struct {
		Amount uint64
	}
	BalancePressed struct{}
)

// Display commands, sent by the ATM to the UI.
type (
	DisplayEnterCard          struct{}
	DisplayEnterPin           struct{}
	DisplayPinIncorrect       struct{}
	DisplayWithdrawalOptions  struct{}
	DisplayInsufficientFunds  struct{}
	DisplayWithdrawalCanceled struct{}
	DisplayBalance            struct {
		Amount uint64
	}
	IssueMoney struct {
		Amount uint64
	}
	EjectCard struct{}
)

// Requests from the ATM to the bank. ReplyTo addresses the ATM's queue.
type (
	VerifyPin struct {
		Account string
		Pin     string
		ReplyTo messaging.Sender
	}
	RequestWithdraw struct {
		Account string
		Amount  uint64
		ReplyTo messaging.Sender
	}
	GetBalance struct {
		Account string
		ReplyTo messaging.Sender
	}
	CompleteWithdraw struct {
		Account string
		Amount  uint64
	}
)

// Replies from the bank to the ATM.
type (
	PinVerified     struct{}
	PinIncorrect    struct{}
	WithdrawSuccess struct{}
	WithdrawDenied  struct{}
	Balance         struct {
		Amount uint64
	}
)

func (CardInserted) atmMessage()    {}
func (DigitPressed) atmMessage()    {}
func (CancelPressed) atmMessage()   {}
func (WithdrawPressed) atmMessage() {}
func (BalancePressed) atmMessage()  {}

func (DisplayEnterCard) atmMessage()          {}
func (DisplayEnterPin) atmMessage()           {}
func (DisplayPinIncorrect) atmMessage()       {}
func (DisplayWithdrawalOptions) atmMessage()  {}
func (DisplayInsufficientFunds) atmMessage()  {}
func (DisplayWithdrawalCanceled) atmMessage() {}
func (DisplayBalance) atmMessage()            {}
func (IssueMoney) atmMessage()                {}
func (EjectCard) atmMessage()                 {}

func (VerifyPin) atmMessage()        {}
func (RequestWithdraw) atmMessage()  {}
func (GetBalance) atmMessage()       {}
func (CompleteWithdraw) atmMessage() {}

func (PinVerified) atmMessage()     {}
func (PinIncorrect) atmMessage()    {}
func (WithdrawSuccess) atmMessage() {}
func (WithdrawDenied) atmMessage()  {}
func (Balance) atmMessage()         {}
