package channel

import "fmt"

type Role int

const (
	// Requester connects to a peer and alternates send, receive.
	Requester Role = iota + 1
	// Replier binds an endpoint and alternates receive, send.
	Replier
)

func (r Role) String() string {
	switch r {
	case Requester:
		return "requester"
	case Replier:
		return "replier"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// State of a Channel.
//
//	requester: Unconnected --Connect--> Connected --Send--> AwaitingReply --Receive--> Connected
//	replier:   Unconnected --Bind--> Connected --Receive--> ReplyPending --Send--> Connected
//
// Close moves any state to Closed. A transport failure returns a requester
// to Unconnected and a replier to Connected (still bound, no peer).
type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateAwaitingReply
	StateReplyPending
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateAwaitingReply:
		return "awaiting-reply"
	case StateReplyPending:
		return "reply-pending"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// checkSend validates that a send is allowed in state s for role r.
func checkSend(r Role, s State) (Kind, error) {
	switch s {
	case StateClosed:
		return KindSend, ErrClosed
	case StateUnconnected:
		return KindSend, ErrNotConnected
	}

	switch r {
	case Requester:
		if s == StateAwaitingReply {
			return KindProtocol, ErrReplyOutstanding
		}
	case Replier:
		if s != StateReplyPending {
			return KindProtocol, ErrNoPendingRequest
		}
	}
	return 0, nil
}

// checkReceive validates that a receive is allowed in state s for role r.
func checkReceive(r Role, s State) (Kind, error) {
	switch s {
	case StateClosed:
		return KindReceive, ErrClosed
	case StateUnconnected:
		return KindReceive, ErrNotConnected
	}

	switch r {
	case Requester:
		if s != StateAwaitingReply {
			return KindProtocol, ErrNoRequest
		}
	case Replier:
		if s == StateReplyPending {
			return KindProtocol, ErrRequestPending
		}
	}
	return 0, nil
}
