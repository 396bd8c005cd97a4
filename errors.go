package mqtt5

import (
	"errors"
	"fmt"

	"github.com/golang-io/mqtt5/packet"
)

// Kind is the error taxonomy the Client Facade surfaces; it never
// returns a lower-level transport or codec error directly.
type Kind int

const (
	_ Kind = iota
	KindTransportError
	KindTimeout
	KindMalformedPacket
	KindProtocolError
	KindConnectRejected
	KindOperationRejected
	KindCapabilityViolation
	KindIdentifierExhausted
	KindCancelled
	KindDisconnectedByUser
	KindSessionLost
)

func (k Kind) String() string {
	switch k {
	case KindTransportError:
		return "TransportError"
	case KindTimeout:
		return "Timeout"
	case KindMalformedPacket:
		return "MalformedPacket"
	case KindProtocolError:
		return "ProtocolError"
	case KindConnectRejected:
		return "ConnectRejected"
	case KindOperationRejected:
		return "OperationRejected"
	case KindCapabilityViolation:
		return "CapabilityViolation"
	case KindIdentifierExhausted:
		return "IdentifierExhausted"
	case KindCancelled:
		return "Cancelled"
	case KindDisconnectedByUser:
		return "DisconnectedByUser"
	case KindSessionLost:
		return "SessionLost"
	default:
		return "Unknown"
	}
}

// Error is the error type every public Client operation fails with.
// Reason carries the broker's ReasonCode when Kind is ConnectRejected or
// OperationRejected; it is the zero ReasonCode otherwise.
type Error struct {
	Kind   Kind
	Reason packet.ReasonCode
	Err    error // wrapped cause, e.g. a transport I/O error
}

func (e *Error) Error() string {
	if e.Reason.Code != 0 || e.Kind == KindConnectRejected || e.Kind == KindOperationRejected {
		return fmt.Sprintf("mqtt5: %s: %s", e.Kind, e.Reason.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("mqtt5: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("mqtt5: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, &mqtt5.Error{Kind: mqtt5.KindSessionLost}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func rejectedError(kind Kind, reason packet.ReasonCode) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// isPermanentConnectReject reports whether reason indicates a condition
// that a reconnect attempt won't fix, per spec.md §7's ConnectRejected
// retry policy.
func isPermanentConnectReject(reason packet.ReasonCode) bool {
	switch reason.Code {
	case packet.ErrMalformedPacket.Code,
		packet.ErrProtocolError.Code,
		packet.ErrNotAuthorized.Code,
		packet.ErrBanned.Code,
		packet.ErrClientIdentifierNotValid.Code,
		packet.ErrBadUsernameOrPassword.Code,
		packet.ErrUnsupportedProtocolVersion.Code:
		return true
	case packet.ErrServerUnavailable.Code:
		return true // permanent whether or not a server reference was sent; the reference is not examined
	default:
		return false
	}
}
