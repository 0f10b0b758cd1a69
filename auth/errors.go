package auth

import "fmt"

// ErrorKind classifies why credential acquisition failed.
type ErrorKind string

const (
	// CredentialsRejected means the identity endpoint answered and refused us.
	CredentialsRejected ErrorKind = "credentials_rejected"
	// EnvironmentUnsupported means the platform cannot serve this method at
	// all (e.g. no metadata endpoint outside managed compute). Not retryable.
	EnvironmentUnsupported ErrorKind = "environment_unsupported"
	// FlowExpired means an interactive flow ran out before the user finished.
	FlowExpired ErrorKind = "flow_expired"
	// FlowDenied means the user explicitly declined authorization.
	FlowDenied ErrorKind = "flow_denied"
)

// Error is a classified credential acquisition failure. Raw transport errors
// never escape the package unclassified.
type Error struct {
	Kind   ErrorKind
	Method Method
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("auth %s failed (%s): %v", e.Method, e.Kind, e.cause)
	}
	return fmt.Sprintf("auth %s failed (%s)", e.Method, e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, method Method, cause error) *Error {
	return &Error{Kind: kind, Method: method, cause: cause}
}

// FallbackError reports that both the primary and the fallback methods failed.
// Both reasons are preserved so the operator can diagnose each independently.
type FallbackError struct {
	PrimaryErr  error
	FallbackErr error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("both auth methods failed: primary: %v; fallback: %v", e.PrimaryErr, e.FallbackErr)
}

// Unwrap exposes the primary failure to errors.Is/As chains.
func (e *FallbackError) Unwrap() error { return e.PrimaryErr }

// AsAuthError extracts a classified *Error from an error chain, unwrapping a
// FallbackError to its primary reason.
func AsAuthError(err error) (*Error, bool) {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			return ae, true
		}
		if fe, ok := err.(*FallbackError); ok {
			err = fe.PrimaryErr
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
