package messaging

import "time"

// CloseQueue is the shutdown sentinel. A dispatcher that pops it returns
// [Closed] without invoking any handler.
type CloseQueue struct{}

func (CloseQueue) MsgType() string { return "messaging.close_queue" }

// Envelope wraps one message together with its type tag so that a single
// queue can carry values of unrelated types.
type Envelope struct {
	Type   string    // type tag, see MsgTypeOf
	Msg    any       // the message value
	SentAt time.Time // time the envelope was created
}

// Wrap puts msg into a new Envelope.
func Wrap(msg any) Envelope {
	return Envelope{Type: MsgTypeOf(msg), Msg: msg, SentAt: time.Now()}
}

// Is reports whether the envelope carries a T.
func Is[T any](env Envelope) bool {
	_, ok := env.Msg.(T)
	return ok
}

// IsClose reports whether the envelope carries the shutdown sentinel.
func (e Envelope) IsClose() bool {
	switch e.Msg.(type) {
	case CloseQueue, *CloseQueue:
		return true
	}
	return false
}
