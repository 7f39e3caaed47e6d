package lisp

import (
	"fmt"
	"io"
	"log/slog"
)

// Config is a function that configures an Interp.
type Config func(interp *Interp) error

// WithReader returns a Config that makes the Interp use r to parse source
// text.  There is no default Reader.
func WithReader(r Reader) Config {
	return func(interp *Interp) error {
		interp.Reader = r
		return nil
	}
}

// WithStderr returns a Config that makes the Interp write debugging output to
// w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(interp *Interp) error {
		interp.Stderr = w
		return nil
	}
}

// WithLogger returns a Config that makes the Interp, its Heap and its LEnv
// emit structured debug logs to logger instead of slog.Default().
func WithLogger(logger *slog.Logger) Config {
	return func(interp *Interp) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		interp.logger = logger
		interp.Heap.logger = logger
		interp.Env.logger = logger
		return nil
	}
}

// WithGCThreshold returns a Config that sets the smallest accounted heap size
// at which an allocation triggers a collection.
func WithGCThreshold(n int) Config {
	return func(interp *Interp) error {
		if n < 0 {
			return fmt.Errorf("negative gc threshold: %d", n)
		}
		interp.Heap.SetMinThreshold(n)
		return nil
	}
}

// WithGCDisabled returns a Config that starts the Interp with collection
// disabled.
func WithGCDisabled() Config {
	return func(interp *Interp) error {
		interp.Heap.Disable()
		return nil
	}
}
