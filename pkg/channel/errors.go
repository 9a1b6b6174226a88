// Kunhua Huang 2026

package channel

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Channel operation matches exactly
// one of these with errors.Is.
var (
	ErrConnection        = errors.New("connection error")
	ErrSend              = errors.New("send error")
	ErrReceive           = errors.New("receive error")
	ErrProtocolViolation = errors.New("protocol violation")
)

// Causes.
var (
	ErrNotConnected     = errors.New("channel is not connected")
	ErrAlreadyConnected = errors.New("channel is already connected")
	ErrClosed           = errors.New("channel is closed")
	ErrEmptyPayload     = errors.New("payload is empty")
	ErrWrongRole        = errors.New("operation not valid for channel role")
	ErrReplyOutstanding = errors.New("send while awaiting reply")
	ErrNoRequest        = errors.New("receive without outstanding request")
	ErrRequestPending   = errors.New("receive while a request is unanswered")
	ErrNoPendingRequest = errors.New("send without a request to answer")
	ErrBusy             = errors.New("another operation is in progress")
	ErrSequenceMismatch = errors.New("reply sequence does not match request")
	ErrUnexpectedFrame  = errors.New("unexpected frame type")
	ErrPeerDisconnected = errors.New("peer disconnected")
)

type Kind int

const (
	KindConnection Kind = iota + 1
	KindSend
	KindReceive
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindSend:
		return "SendError"
	case KindReceive:
		return "ReceiveError"
	case KindProtocol:
		return "ProtocolViolation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindSend:
		return ErrSend
	case KindReceive:
		return ErrReceive
	case KindProtocol:
		return ErrProtocolViolation
	default:
		return nil
	}
}

// Error reports a failed channel operation.
type Error struct {
	Kind Kind
	Op   string
	Addr string
	Err  error
}

func (e *Error) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// RemoteError carries the message of an error frame sent by the replier.
type RemoteError struct {
	Sequence uint64
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (seq %d): %s", e.Sequence, e.Message)
}

func newError(kind Kind, op, addr string, err error) *Error {
	return &Error{Kind: kind, Op: op, Addr: addr, Err: err}
}

// KindOf returns the kind of a channel error, or 0 for foreign errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
