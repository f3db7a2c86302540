package safeword

import (
	"context"
	"os"
	"syscall"
)

// Workload is the computation a Runner races against its signals. It must
// produce a value or an error exactly once. The context is cancelled once
// the race is decided; a workload still running at that point is abandoned,
// not waited for.
type Workload[T any] func(ctx context.Context) (T, error)

// Runner races one workload against a set of OS signals and reports which
// side settled first.
//
// A Runner stays valid after Run returns: Run snapshots the configured
// signals, so the same Runner may be run again, including concurrently.
// Signal registration is scoped to each Run call and released when it
// returns.
type Runner[T any] struct {
	signals  []os.Signal
	base     context.Context
	notifier Notifier
}

// New returns a Runner with no signals configured. Its watcher set never
// fires, so Run returns only once the workload settles.
func New[T any]() *Runner[T] {
	return &Runner[T]{
		base:     context.Background(),
		notifier: osNotifier{},
	}
}

// Default returns a Runner configured for SIGINT and SIGTERM, the signals
// terminals and init systems conventionally deliver to stop a process.
func Default[T any]() *Runner[T] {
	return New[T]().Signal(syscall.SIGINT).Signal(syscall.SIGTERM)
}

// Signal appends sig to the watched set and returns the Runner for chaining.
// Duplicates are tolerated; they merge into a single registration.
func (r *Runner[T]) Signal(sig os.Signal) *Runner[T] {
	r.signals = append(r.signals, sig)
	return r
}

// Context sets the base context the workload context derives from. A base
// context that is already done makes Run return SetupFailed before anything
// starts.
func (r *Runner[T]) Context(ctx context.Context) *Runner[T] {
	r.base = ctx
	return r
}

// Notify sets the signal registration implementation. The default uses
// os/signal.
func (r *Runner[T]) Notify(n Notifier) *Runner[T] {
	r.notifier = n
	return r
}

type raceResult[T any] struct {
	value T
	err   error
}

// Run starts workload and the signal watcher set concurrently and blocks
// until the first of them settles, then classifies:
//
//   - a configured signal fired first: StoppedBySignal
//   - workload returned a value first: WorkloadFinished
//   - workload returned an error first: WorkloadFailed
//   - base context already done: SetupFailed, workload never starts
//   - signal registration failed: SignalWatchFailed, workload never starts
//
// First result strictly wins. In a true tie either side may be reported;
// once one side is reported the other is never observed. There is no
// timeout: a workload that never settles and never receives a signal blocks
// forever.
func (r *Runner[T]) Run(workload Workload[T]) Outcome[T] {
	base := r.base
	if base == nil {
		base = context.Background()
	}
	notifier := r.notifier
	if notifier == nil {
		notifier = osNotifier{}
	}

	if err := base.Err(); err != nil {
		return Outcome[T]{Reason: SetupFailed, Err: err}
	}

	sigs := append([]os.Signal(nil), r.signals...)
	sigC, err := watchSignals(notifier, sigs)
	if err != nil {
		return Outcome[T]{Reason: SignalWatchFailed, Err: err}
	}
	if sigC != nil {
		defer notifier.Stop(sigC)
	}

	ctx, cancel := context.WithCancel(base)
	defer cancel()

	resC := make(chan raceResult[T], 1)
	go func() {
		v, err := workload(ctx)
		resC <- raceResult[T]{value: v, err: err}
	}()

	// A nil sigC (empty signal set) blocks that case forever.
	select {
	case sig := <-sigC:
		return Outcome[T]{Reason: StoppedBySignal, Signal: sig}
	case res := <-resC:
		if res.err != nil {
			return Outcome[T]{Reason: WorkloadFailed, Err: res.err}
		}
		return Outcome[T]{Reason: WorkloadFinished, Value: res.value}
	}
}
