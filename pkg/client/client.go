// Kunhua Huang 2026

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ecstasoy/msgbus/pkg/channel"
	"github.com/ecstasoy/msgbus/pkg/codec"
)

// Client is a requester with one call in flight at a time. Unlike a bare
// channel it is safe for concurrent use: calls queue behind each other.
type Client struct {
	addr  string
	opts  *clientOptions
	ch    *channel.Channel
	codec codec.Codec

	mu sync.Mutex
}

func New(addr string, opts ...Option) *Client {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	chOpts := []channel.Option{
		channel.WithCodec(options.codecType),
		channel.WithCompress(options.compressType),
		channel.WithDialOptions(options.dialOptions...),
		channel.WithLogger(options.logger),
	}
	if options.observer != nil {
		chOpts = append(chOpts, channel.WithObserver(options.observer))
	}

	return &Client{
		addr:  addr,
		opts:  options,
		ch:    channel.NewRequester(chOpts...),
		codec: codec.GetOrDefault(options.codecType),
	}
}

func (c *Client) Addr() string {
	return c.addr
}

// Dial connects to the replier. After a failed call drops the connection,
// Dial must be called again; the client never reconnects on its own.
func (c *Client) Dial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ch.Connect(ctx, c.addr)
}

// Call sends payload and waits for the reply. Nothing is retried.
func (c *Client) Call(ctx context.Context, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.callTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.call(ctx, payload)
	if c.opts.roundTrips != nil {
		c.opts.roundTrips.ObserveRoundTrip(time.Since(start), err)
	}

	return reply, err
}

func (c *Client) call(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.ch.Send(ctx, payload); err != nil {
		return nil, err
	}

	reply, err := c.ch.Receive(ctx)
	if err != nil {
		var remote *channel.RemoteError
		if errors.As(err, &remote) {
			return nil, unmapError(err, remote)
		}
		return nil, err
	}

	return reply, nil
}

// Invoke encodes args with the client's codec, calls, and decodes the reply
// into reply. A nil reply discards the response.
func (c *Client) Invoke(ctx context.Context, args any, reply any) error {
	payload, err := c.codec.Encode(args)
	if err != nil {
		return fmt.Errorf("encode args with %s: %w", c.codec.Name(), err)
	}

	resp, err := c.Call(ctx, payload)
	if err != nil {
		return err
	}

	if reply == nil {
		return nil
	}

	if err := c.codec.Decode(resp, reply); err != nil {
		return fmt.Errorf("decode reply with %s: %w", c.codec.Name(), err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.ch.Close()
}
