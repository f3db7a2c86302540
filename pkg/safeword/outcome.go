package safeword

import (
	"fmt"
	"os"
)

// Reason identifies which side of the race settled first.
type Reason int

const (
	// StoppedBySignal means a configured signal fired before the workload
	// finished. This is the clean-shutdown case.
	StoppedBySignal Reason = iota

	// WorkloadFinished means the workload returned a value before any
	// signal. For a workload that was expected to run until told to stop,
	// this is not a clean shutdown.
	WorkloadFinished

	// WorkloadFailed means the workload returned an error before any signal.
	WorkloadFailed

	// SetupFailed means the run could not start because the base context
	// was already done. No signal was registered and the workload never ran.
	SetupFailed

	// SignalWatchFailed means registering one of the configured signals
	// failed before either a signal or the workload completed.
	SignalWatchFailed
)

// String returns the reason name for logging.
func (r Reason) String() string {
	switch r {
	case StoppedBySignal:
		return "stopped_by_signal"
	case WorkloadFinished:
		return "workload_finished"
	case WorkloadFailed:
		return "workload_failed"
	case SetupFailed:
		return "setup_failed"
	case SignalWatchFailed:
		return "signal_watch_failed"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the classified result of a single Run call.
//
// Exactly one Reason is produced per call. The payload fields are populated
// only for the variants that carry them: Value for WorkloadFinished, Signal
// for StoppedBySignal, Err for the three failure variants.
type Outcome[T any] struct {
	// Reason says which side of the race settled first.
	Reason Reason

	// Value is the workload's result. Set only for WorkloadFinished.
	Value T

	// Signal is the signal that fired. Set only for StoppedBySignal.
	// When several configured signals are pending at once, which one is
	// reported is unspecified.
	Signal os.Signal

	// Err is the underlying cause. Set for WorkloadFailed, SetupFailed and
	// SignalWatchFailed; nil otherwise.
	Err error
}

// Stopped reports whether the run ended because a configured signal fired.
func (o Outcome[T]) Stopped() bool {
	return o.Reason == StoppedBySignal
}

// Failure maps the Outcome to an error: nil when a signal stopped the run,
// and otherwise an error describing why the run ended early. The underlying
// cause, where one exists, is wrapped and reachable with errors.Is/As.
func (o Outcome[T]) Failure() error {
	switch o.Reason {
	case StoppedBySignal:
		return nil
	case WorkloadFinished:
		return fmt.Errorf("workload finished before any signal (value: %v)", o.Value)
	case WorkloadFailed:
		return fmt.Errorf("workload failed: %w", o.Err)
	case SetupFailed:
		return fmt.Errorf("setup failed: %w", o.Err)
	case SignalWatchFailed:
		return fmt.Errorf("signal watch failed: %w", o.Err)
	default:
		return fmt.Errorf("unknown outcome %s", o.Reason)
	}
}
