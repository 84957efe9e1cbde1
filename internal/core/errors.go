package core

// ErrorKind classifies protocol-visible failures. Fatal-session errors
// end the session after the client is notified; everything else leaves
// the connection alive.
type ErrorKind int

const (
	KindFatalSession ErrorKind = iota
	KindAuthorization
	KindProtocol
	KindInternal
)

type SessionError struct {
	Kind    ErrorKind
	Message string
}

func (e *SessionError) Error() string { return e.Message }

func (e *SessionError) Fatal() bool { return e.Kind == KindFatalSession }

func FatalSession(msg string) *SessionError {
	return &SessionError{Kind: KindFatalSession, Message: msg}
}

func Unauthorized(msg string) *SessionError {
	return &SessionError{Kind: KindAuthorization, Message: msg}
}

func Protocol(msg string) *SessionError {
	return &SessionError{Kind: KindProtocol, Message: msg}
}

// Internal deliberately carries a generic message; store faults are
// logged server-side and never leak detail to the client.
func Internal(msg string) *SessionError {
	return &SessionError{Kind: KindInternal, Message: msg}
}
