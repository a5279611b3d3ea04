package app

import "fmt"

// WiringError reports a structural mistake: a state holder used without an App
// built by New, or New called without a required dependency. It is not a
// runtime condition and is never recovered from.
type WiringError struct {
	Holder string
	Cause  error
}

func (e *WiringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s must be used within an App created by app.New: %v", e.Holder, e.Cause)
	}
	return fmt.Sprintf("%s must be used within an App created by app.New", e.Holder)
}

func (e *WiringError) Unwrap() error {
	return e.Cause
}
