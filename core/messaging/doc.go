// Package messaging provides typed in-process message passing between
// goroutines that share no mutable state.
//
// A [Receiver] owns an unbounded FIFO [Queue]. Other goroutines get a
// [Sender] from it and push arbitrary message values; each value travels in
// an [Envelope] tagged with its type name.
//
// # Dispatching
//
// The owner of a receiver waits for the next message it is interested in by
// building a chain of cases and running it:
//
//	out, err := rcv.Wait().
//	    Handle(messaging.On(func(m CardInserted) { ... })).
//	    Handle(messaging.On(func(m CancelPressed) { ... })).
//	    Run()
//
// Run pops envelopes until one matches a case, in registration order, and
// invokes that handler only. Envelopes no case accepts are dropped, not
// requeued. A chain runs once; call Wait again to wait for the next message.
//
// # Shutdown
//
// Sending [CloseQueue] (see [Close]) makes the running chain return [Closed]
// without calling a handler. It is the only way to stop a receive loop:
//
//	for {
//	    out, err := rcv.Wait().Handle(cases...).Run()
//	    if out == messaging.Closed {
//	        return nil
//	    }
//	    ...
//	}
//
// # Reply addresses
//
// Requests that expect an answer carry a Sender back to the requester:
//
//	bank.Send(VerifyPin{Account: acc, Pin: pin, ReplyTo: self.Sender()})
package messaging
