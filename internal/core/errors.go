package core

import "errors"

// ErrNotOnline is returned by Send when the recipient has no registered
// connection. Callers treat it as "recipient offline", not a failure worth
// surfacing to anyone.
var ErrNotOnline = errors.New("user not online")
