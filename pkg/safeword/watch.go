package safeword

import (
	"fmt"
	"os"
)

// watchSignals registers every signal in sigs onto one buffered channel and
// returns it. The channel is the combined watcher set: the first delivery on
// it means at least one configured signal fired. When several are pending,
// which arrives first is up to the runtime.
//
// An empty set returns a nil channel. Receiving from a nil channel blocks
// forever, so an unconfigured watcher set always loses the race.
//
// Signals are registered one at a time so a failing Notifier can report
// which signal could not be watched. Registering the same signal twice on
// the same channel merges into a single registration under os/signal.
func watchSignals(n Notifier, sigs []os.Signal) (chan os.Signal, error) {
	if len(sigs) == 0 {
		return nil, nil
	}

	// One buffer slot per signal: os/signal sends without blocking and
	// drops deliveries that do not fit.
	c := make(chan os.Signal, len(sigs))
	for _, sig := range sigs {
		if err := n.Notify(c, sig); err != nil {
			n.Stop(c)
			return nil, fmt.Errorf("watch signal %v: %w", sig, err)
		}
	}
	return c, nil
}
