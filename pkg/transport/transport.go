// Kunhua Huang 2026

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

var (
	ErrInvalidAddress    = errors.New("invalid endpoint address")
	ErrUnsupportedScheme = errors.New("unsupported endpoint scheme")
	ErrFrameTooLarge     = errors.New("frame exceeds maximum size")
	ErrUnknownCompressor = errors.New("unknown compressor")
	ErrUnexpectedFrame   = errors.New("unexpected frame")
	ErrListenerClosed    = errors.New("listener closed")
)

// Conn carries whole frames between exactly two peers. A Conn is not safe
// for concurrent readers or concurrent writers, but one reader and one
// writer may run at the same time as Close.
type Conn interface {
	WriteFrame(ctx context.Context, frame *protocol.Frame) error
	ReadFrame(ctx context.Context) (*protocol.Frame, error)
	Close() error

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
	Addr() net.Addr
}

// Transport dials and listens on the endpoints of one or more schemes.
type Transport interface {
	Dial(ctx context.Context, ep Endpoint, opts *ClientOptions) (Conn, error)
	Listen(ctx context.Context, ep Endpoint, opts *ServerOptions) (Listener, error)
}

var registry = struct {
	transports map[string]Transport
	sync.RWMutex
}{
	transports: make(map[string]Transport),
}

func Register(scheme string, t Transport) {
	registry.Lock()
	defer registry.Unlock()

	if t == nil {
		panic(fmt.Sprintf("transport: Register transport is nil for scheme %s", scheme))
	}

	if _, exists := registry.transports[scheme]; exists {
		panic(fmt.Sprintf("transport: Register called twice for scheme %s", scheme))
	}

	registry.transports[scheme] = t
}

func lookup(scheme string) (Transport, error) {
	registry.RLock()
	defer registry.RUnlock()

	t, ok := registry.transports[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return t, nil
}

// Schemes lists the registered endpoint schemes.
func Schemes() []string {
	registry.RLock()
	defer registry.RUnlock()

	schemes := make([]string, 0, len(registry.transports))
	for s := range registry.transports {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

func Dial(ctx context.Context, addr string, options ...ClientOption) (Conn, error) {
	ep, err := ParseEndpoint(addr)
	if err != nil {
		return nil, err
	}

	t, err := lookup(ep.Scheme)
	if err != nil {
		return nil, err
	}

	opts := DefaultClientOptions()
	for _, o := range options {
		o(opts)
	}

	return t.Dial(ctx, ep, opts)
}

func Listen(ctx context.Context, addr string, options ...ServerOption) (Listener, error) {
	ep, err := ParseEndpoint(addr)
	if err != nil {
		return nil, err
	}

	t, err := lookup(ep.Scheme)
	if err != nil {
		return nil, err
	}

	opts := DefaultServerOptions()
	for _, o := range options {
		o(opts)
	}

	return t.Listen(ctx, ep, opts)
}
