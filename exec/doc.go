// Package exec replaces the calling process image, optionally after
// resolving an unqualified command name against a PATH-style directory
// list.
//
// A Resolver marshals argument and environment vectors, invokes the
// execute trap, and for unqualified names walks the search path in
// order: a candidate that does not exist moves resolution to the next
// directory, while any other failure is decisive and is returned
// immediately, never masked by later candidates or by diagnostics.
//
// Example:
//
//	r := exec.New()
//	err := r.Command("ls", "-l")
//	// err is non-nil: a successful replacement never returns.
package exec
