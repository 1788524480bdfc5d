// Package dl opens native shared libraries and resolves their exported
// symbols into callable Go functions.
//
// A Library owns one dlopen handle. Every function bound from it borrows that
// handle, so the Library must stay open until the last call through any of
// its symbols has returned:
//
//	lib, err := dl.Open("./libservice.so")
//	if err != nil {
//	    return err
//	}
//	defer lib.Close()
//
//	sym, err := dl.Resolve[func() int32](lib, "Version")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sym.Func())
//
// # Signatures
//
// The Go function type given to Bind or Resolve is the caller's declaration
// of the C signature. Nothing verifies it against the object; a mismatch is
// undefined behavior at call time, not an error at bind time.
//
// # Lifetime
//
// Callers that hand a bound function to another goroutine should bracket the
// call with Retain and Release. Close refuses with ErrInUse while any
// retention is outstanding instead of unmapping code that may still be
// executing. Closing early remains a caller bug; ErrInUse only reports it.
package dl
