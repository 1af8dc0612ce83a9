// Package actor runs message-driven state machines on their own goroutines.
//
// An actor owns a [messaging.Receiver] and Senders to its collaborators. Its
// behaviour is a [Machine]: a table mapping a state tag to a [StateFunc] that
// waits for exactly one of the messages valid in that state and returns the
// next state.
//
//	m := actor.NewMachine(actor.MachineOptions[State]{
//	    Name:    "door",
//	    Initial: Closed,
//	    States: map[State]actor.StateFunc[State]{
//	        Closed: d.closed,
//	        Open:   d.open,
//	    },
//	})
//	h, err := actor.Spawn(actor.Options{Name: "door"}, m)
//
// The machine stops when a state's dispatch chain reports
// [messaging.Closed], i.e. when the shutdown sentinel reaches the actor's
// queue. [Handle.Join] waits for that to happen; [JoinGuard] gives a single
// owner the duty to join. [System] keeps named actors together and shuts them
// all down.
package actor
