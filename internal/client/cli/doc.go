// Package cli implements the userdir command-line client.
//
// Each invocation runs a single command against the gRPC endpoint:
//
//	client [-a addr] [-token t] register|login|me|list|delete [args]
//
// register and login print the issued tokens so they can be passed back with
// -token (and -refresh) on later invocations. Passwords are read from the
// terminal without echo.
package cli
