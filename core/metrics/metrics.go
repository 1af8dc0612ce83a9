// Package metrics declares the small instrumentation surface shared by the
// messaging and actor packages. Backends (see adapters/prometheus) implement
// it; the core only ever talks to these types.
package metrics

// Timer measures one operation. Obtain it when the operation starts and call
// ObserveDuration when it ends:
//
//	defer m.HandleDuration(msgType).ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// TimerFunc adapts a plain function to Timer.
type TimerFunc func()

func (f TimerFunc) ObserveDuration() { f() }

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

// NopTimer returns a Timer that records nothing.
func NopTimer() Timer { return nopTimer{} }
