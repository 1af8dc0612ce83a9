package atm

// State is the ATM controller's current state.
type State int

const (
	WaitingForCard State = iota
	GettingPin
	WaitingForPinVerification
	WaitingForWithdrawChoice
	WaitingForWithdrawResult
	WaitingForBalance
	Done
)

func (s State) String() string {
	switch s {
	case WaitingForCard:
		return "waiting_for_card"
	case GettingPin:
		return "getting_pin"
	case WaitingForPinVerification:
		return "waiting_for_pin_verification"
	case WaitingForWithdrawChoice:
		return "waiting_for_withdraw_choice"
	case WaitingForWithdrawResult:
		return "waiting_for_withdraw_result"
	case WaitingForBalance:
		return "waiting_for_balance"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
