package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a Failure.
type Kind string

// Failure kinds.
const (
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection_error"
	KindHTTP       Kind = "http_error"
	KindOther      Kind = "other"
)

// Failure describes why a fetch did not produce a document.
type Failure struct {
	Kind Kind
	// StatusCode is set for KindHTTP.
	StatusCode int
	Message    string
	Err        error
}

func (f *Failure) Error() string {
	if f.Kind == KindHTTP {
		return fmt.Sprintf("%s (status %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err. Errors that are not failures are
// wrapped as KindOther.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindOther, Message: err.Error(), Err: err}
}
