// Kunhua Huang 2026

package interceptor

import "context"

// Handler answers one request payload with a reply payload.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

type Interceptor func(ctx context.Context, payload []byte, next Handler) ([]byte, error)

type Chain struct {
	interceptors []Interceptor
}

func NewChain(interceptor ...Interceptor) *Chain {
	return &Chain{interceptors: interceptor}
}

func (ic *Chain) Intercept(ctx context.Context, payload []byte, handler Handler) ([]byte, error) {
	return ic.Then(handler)(ctx, payload)
}

// Then wraps handler so the first interceptor registered runs outermost.
func (ic *Chain) Then(handler Handler) Handler {
	if len(ic.interceptors) == 0 {
		return handler
	}

	return ic.buildChain(handler)
}

func (ic *Chain) buildChain(handler Handler) Handler {
	for i := len(ic.interceptors) - 1; i >= 0; i-- {
		next := handler
		interceptor := ic.interceptors[i]

		handler = func(ctx context.Context, payload []byte) ([]byte, error) {
			return interceptor(ctx, payload, next)
		}
	}

	return handler
}
