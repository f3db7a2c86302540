// Package safeword runs a workload until the first of a set of OS signals
// arrives, and reports which side settled first.
//
// A long-running process often wants to know whether it stopped because it
// was asked to (SIGINT, SIGTERM) or because its main loop ended on its own.
// The distinction matters for cleanup: a Unix socket server, for example,
// should delete its socket path only after a clean, signal-driven shutdown.
//
// The package races one workload against a watcher set:
//
//   - Runner: owns the configured signals and drives the race
//   - Workload: any computation producing a value or an error exactly once
//   - Outcome: which side won, with the full cause attached
//
// Usage:
//
//	out := safeword.Default[struct{}]().Run(func(ctx context.Context) (struct{}, error) {
//		return struct{}{}, srv.Serve(ctx)
//	})
//	if out.Stopped() {
//		os.Remove(socketPath)
//	}
//
// The package performs no logging and no cleanup of its own; it only
// classifies. Everything after the classification is the caller's business.
package safeword
