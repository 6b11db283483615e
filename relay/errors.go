package relay

import "errors"

// ErrInvalidArgument wraps malformed embedded-command arguments. The
// offending command is skipped; remaining commands still run.
var ErrInvalidArgument = errors.New("invalid command argument")

// ErrUnknownFunction is reported when the model requests a native function
// call the relay does not implement.
var ErrUnknownFunction = errors.New("unknown function")
