package atm

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
)

// Renderer puts one screen text in front of the user.
type Renderer interface {
	Render(text string) error
}

// WriterRenderer writes each text as a line to W.
type WriterRenderer struct {
	W io.Writer
}

func (r WriterRenderer) Render(text string) error {
	_, err := fmt.Fprintln(r.W, text)
	return err
}

type UIOptions struct {
	ID string
	// Renderer shows the texts. Defaults to a WriterRenderer on Out.
	Renderer Renderer
	// Out is used when Renderer is nil. Defaults to os.Stdout.
	Out io.Writer
	// WithdrawAmount is the amount offered on the withdrawal menu.
	WithdrawAmount uint64
	Logger         *slog.Logger
	Messaging      messaging.Metrics
	Metrics        actor.Metrics
}

type uiState int

const rendering uiState = 0

func (uiState) String() string { return "rendering" }

// UI renders display commands as text lines.
type UI struct {
	incoming       *messaging.Receiver
	renderer       Renderer
	withdrawAmount uint64
	machine        *actor.Machine[uiState]
}

func NewUI(opt UIOptions) *UI {
	if opt.ID == "" {
		opt.ID = "ui"
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Renderer == nil {
		opt.Renderer = WriterRenderer{W: opt.Out}
	}
	if opt.WithdrawAmount == 0 {
		opt.WithdrawAmount = 50
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	u := &UI{
		incoming: messaging.NewReceiver(messaging.Options{
			ID:      opt.ID,
			Logger:  opt.Logger,
			Metrics: opt.Messaging,
		}),
		renderer:       opt.Renderer,
		withdrawAmount: opt.WithdrawAmount,
	}
	u.machine = actor.NewMachine(actor.MachineOptions[uiState]{
		Name:    opt.ID,
		Initial: rendering,
		States:  map[uiState]actor.StateFunc[uiState]{rendering: u.render},
		Logger:  opt.Logger.With(slog.String("actor", opt.ID)),
		Metrics: opt.Metrics,
	})
	return u
}

func (u *UI) Sender() messaging.Sender { return u.incoming.Sender() }

func (u *UI) Close() { messaging.Close(u.Sender()) }

func (u *UI) Run() error { return u.machine.Run() }

func (u *UI) render() (uiState, messaging.Outcome, error) {
	out, err := u.incoming.Wait().
		Handle(messaging.OnErr(func(m Message) error {
			text := u.Text(m)
			if text == "" {
				return nil
			}
			return u.renderer.Render(text)
		})).
		Run()
	return rendering, out, err
}

// Text returns the screen text for a display command, or "" for messages
// the UI does not show.
func (u *UI) Text(m Message) string {
	switch m := m.(type) {
	case DisplayEnterCard:
		return "Please insert your card (i)"
	case DisplayEnterPin:
		return "Please enter your pin (0-9)"
	case DisplayPinIncorrect:
		return "Pin is incorrect."
	case DisplayWithdrawalOptions:
		return fmt.Sprintf("Withdraw %d? (w)\nBalance? (b)\nCancel? (c)", u.withdrawAmount)
	case DisplayInsufficientFunds:
		return "Insufficient funds."
	case DisplayWithdrawalCanceled:
		return "Withdrawal canceled."
	case DisplayBalance:
		return fmt.Sprintf("Balance: $%d", m.Amount)
	case IssueMoney:
		return fmt.Sprintf("Issuing $%d", m.Amount)
	case EjectCard:
		return "Ejecting card"
	default:
		return ""
	}
}
