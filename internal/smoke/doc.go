// Package smoke drives a manual register-then-login check against an auth
// API and prints each raw HTTP result for an operator watching the terminal.
//
// A run is exactly two POSTs, register then login, separated by a pause on
// stdin. Non-success statuses are printed and the run continues; transport
// failures and unparsable success bodies end the run with an error.
package smoke
