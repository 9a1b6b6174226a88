// Kunhua Huang 2026

package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	SchemeTCP       = "tcp"
	SchemeIPC       = "ipc"
	SchemeWebSocket = "ws"
)

// Endpoint is a parsed transport address such as tcp://localhost:5555,
// ipc:///tmp/msgbus.sock or ws://localhost:8080/bus.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

func ParseEndpoint(addr string) (Endpoint, error) {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok || scheme == "" || rest == "" {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	ep := Endpoint{Scheme: strings.ToLower(scheme)}

	switch ep.Scheme {
	case SchemeIPC:
		ep.Path = rest
		return ep, nil
	case SchemeTCP:
	case SchemeWebSocket:
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			ep.Path = rest[i:]
			rest = rest[:i]
		} else {
			ep.Path = "/"
		}
	default:
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	host, portStr, err := net.SplitHostPort(rest)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("%w: %q: bad port %q", ErrInvalidAddress, addr, portStr)
	}

	// "*" binds every interface
	if host == "*" {
		host = ""
	}

	ep.Host = host
	ep.Port = port
	return ep, nil
}

// Network returns the net package network name for the endpoint.
func (e Endpoint) Network() string {
	if e.Scheme == SchemeIPC {
		return "unix"
	}
	return "tcp"
}

// HostPort returns the dialable address: host:port, or the socket path for ipc.
func (e Endpoint) HostPort() string {
	if e.Scheme == SchemeIPC {
		return e.Path
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	switch e.Scheme {
	case SchemeIPC:
		return e.Scheme + "://" + e.Path
	case SchemeWebSocket:
		return e.Scheme + "://" + e.HostPort() + e.Path
	default:
		return e.Scheme + "://" + e.HostPort()
	}
}

// FormatAddr renders a listener address back into an endpoint string with
// the given scheme, so a bound ephemeral port can be handed to a dialer.
func FormatAddr(scheme string, addr net.Addr, path string) string {
	if scheme == SchemeIPC {
		return scheme + "://" + addr.String()
	}
	return scheme + "://" + addr.String() + path
}
