// Package cli implements authctl, a small command-line client for the
// authkeeper gRPC API.
//
// Commands:
//   - signup: create an account, prompting for anything not given as a flag
//   - login:  print a bearer token for the account
//   - me:     show the account behind a token
//
// Passwords are always read from the terminal without echo, or from a line
// on stdin when it is not a terminal.
package cli
