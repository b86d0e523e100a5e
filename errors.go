package nuodb

import (
	"fmt"
)

// Kind discriminates the error taxonomy of the driver. Only DatabaseError
// leaves the connection usable; every other kind means the connection is
// broken and must be closed.
type Kind int

const (
	// InterfaceError is raised for misuse of the API: closed cursor, wrong
	// parameter count, unsupported Go value type.
	InterfaceError Kind = iota
	// ConnectionLost is raised on socket failure, a partial frame, or EOF
	// mid-read.
	ConnectionLost
	// AuthFailed is raised when the handshake's session keys disagree or
	// the server rejects the supplied credentials.
	AuthFailed
	// ProtocolError is raised when a tag, length, or opcode violates the
	// wire format.
	ProtocolError
	// DatabaseError is raised when the server returns a non-zero status
	// in the standard response frame. The connection remains usable.
	DatabaseError
	// DataError is raised when a value cannot be marshalled or
	// unmarshalled losslessly.
	DataError
	// Timeout is raised when a configured read/write deadline elapses.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case InterfaceError:
		return "InterfaceError"
	case ConnectionLost:
		return "ConnectionLost"
	case AuthFailed:
		return "AuthFailed"
	case ProtocolError:
		return "ProtocolError"
	case DatabaseError:
		return "DatabaseError"
	case DataError:
		return "DataError"
	case Timeout:
		return "Timeout"
	default:
		return "UnknownError"
	}
}

// DriverError is the single error type surfaced by this package. Code and
// SQLState are only meaningful when Kind is DatabaseError.
type DriverError struct {
	Kind     Kind
	Code     int32
	SQLState string
	Message  string
	cause    error
}

func newError(k Kind, format string, a ...interface{}) *DriverError {
	return &DriverError{Kind: k, Message: fmt.Sprintf(format, a...)}
}

func wrapError(k Kind, cause error, format string, a ...interface{}) *DriverError {
	return &DriverError{Kind: k, Message: fmt.Sprintf(format, a...), cause: cause}
}

func newDatabaseError(code int32, message, sqlState string) *DriverError {
	return &DriverError{Kind: DatabaseError, Code: code, Message: message, SQLState: sqlState}
}

// Error satisfies the error interface.
func (e *DriverError) Error() string {
	if e.Kind == DatabaseError {
		return fmt.Sprintf("nuodb: %s (code %d, sqlstate %s): %s", e.Kind, e.Code, e.SQLState, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("nuodb: %s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("nuodb: %s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/As to reach the underlying cause, if any.
func (e *DriverError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a *DriverError with the same Kind, so callers
// can write errors.Is(err, &DriverError{Kind: nuodb.ConnectionLost}).
func (e *DriverError) Is(target error) bool {
	other, ok := target.(*DriverError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// fatal reports whether an error of this kind leaves the connection broken.
func (k Kind) fatal() bool {
	return k != DatabaseError
}
