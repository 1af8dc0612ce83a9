package messaging

// Sender is a push-only handle to a queue. It is a small value and is meant
// to be copied freely, including into messages as a reply address. The zero
// Sender is valid and drops everything sent to it.
type Sender struct {
	q *Queue
}

// Send wraps msg in an envelope and pushes it to the bound queue.
func (s Sender) Send(msg any) {
	if s.q == nil {
		return
	}
	s.q.Push(Wrap(msg))
}

// Valid reports whether the sender is bound to a queue.
func (s Sender) Valid() bool { return s.q != nil }

// ID returns the id of the bound queue, or "" for the zero Sender.
func (s Sender) ID() string {
	if s.q == nil {
		return ""
	}
	return s.q.id
}

// Close sends the shutdown sentinel through s.
func Close(s Sender) { s.Send(CloseQueue{}) }
