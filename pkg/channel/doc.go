// Package channel implements a synchronous request/reply message channel
// between exactly two peers.
//
// A Requester connects to an endpoint and must alternate Send and Receive.
// A Replier binds an endpoint and must alternate Receive and Send. Calling
// an operation out of turn fails with ErrProtocolViolation without touching
// the transport. Every payload is delivered whole and in order; the channel
// never looks inside it.
//
// Endpoints are URLs: tcp://host:port, ipc:///path/to/socket and
// ws://host:port/path. Errors returned by a Channel match exactly one of
// ErrConnection, ErrSend, ErrReceive and ErrProtocolViolation under
// errors.Is, and carry the underlying cause for errors.Is and errors.As.
//
//	rep := channel.NewReplier()
//	_ = rep.Bind(ctx, "tcp://127.0.0.1:5555")
//
//	req := channel.NewRequester()
//	_ = req.Connect(ctx, "tcp://127.0.0.1:5555")
//	_ = req.Send(ctx, []byte{0x01, 0x02, 0x03})
//	reply, err := req.Receive(ctx)
package channel
