package safeword

import (
	"os"
	"os/signal"
)

// Notifier abstracts OS signal registration so alternative implementations
// can be injected, primarily in tests.
type Notifier interface {
	// Notify registers c to receive the given signals.
	Notify(c chan<- os.Signal, sig ...os.Signal) error

	// Stop unregisters c from every signal it was registered for.
	Stop(c chan<- os.Signal)
}

// osNotifier delegates to the standard library. signal.Notify cannot fail,
// so Notify always returns nil.
type osNotifier struct{}

func (osNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) error {
	signal.Notify(c, sig...)
	return nil
}

func (osNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}
