// Package cli provides the interactive idkeeper command-line client.
//
// It wires configuration, the gRPC client and the session service into a
// REPL. A background watcher pings the server and the prompt shows whether
// it is reachable.
//
// Commands:
//   - register, login (prompt for email and a hidden password)
//   - whoami, refresh, logout (need a session)
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
