// Package echo provides the Unix-domain-socket echo server that
// safeword-echo runs as its workload.
//
// The server binds a socket path, accepts connections and writes every
// byte it reads back to the peer. It is the demonstration case for the
// safeword race: dropping a Unix listener does not delete the socket
// path, so the caller deletes it only after a signal-clean shutdown and
// leaves it in place when the server stopped for any other reason.
//
// Responsibilities:
//
//   - Socket lifecycle: bind, accept, drain on context cancellation
//   - Per-connection handling: ULID-tagged logging, byte echo
//   - Accept throttling and a bound on concurrent connections
//   - Prometheus counters for connections and echoed bytes
package echo
