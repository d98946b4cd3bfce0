// Package bridge is the narrow request/response channel between the UI and
// the privileged shell. The UI only sees the Capability interface; the shell
// registers a handler per named channel and serves requests.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel names.
const (
	ChannelGetPrinters = "get-printers"
	ChannelPrintCanvas = "print-canvas"
	ChannelPrintFile   = "print-file"
)

var (
	// ErrNoHandler is returned for a channel nobody handles.
	ErrNoHandler = errors.New("no handler for channel")
	// ErrClosed is returned once the bridge has been closed.
	ErrClosed = errors.New("bridge closed")
)

// Handler serves one channel. The payload and result types are fixed per
// channel.
type Handler func(ctx context.Context, payload any) (any, error)

type call struct {
	ctx     context.Context
	channel string
	payload any
	reply   chan result // nil for fire-and-forget
}

type result struct {
	value any
	err   error
}

// Bus carries requests from callers to the serving side.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	calls     chan *call
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string]Handler),
		calls:    make(chan *call),
		done:     make(chan struct{}),
	}
}

// Handle registers the handler for channel, replacing any previous one.
func (b *Bus) Handle(channel string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = h
}

// Serve dispatches requests until ctx is done or the bus is closed. Every
// request runs on its own goroutine; there is no queueing or admission
// control.
func (b *Bus) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case c := <-b.calls:
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.dispatch(c)
			}()
		case <-b.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bus) dispatch(c *call) {
	b.mu.RLock()
	h, ok := b.handlers[c.channel]
	b.mu.RUnlock()

	log := logrus.WithField("channel", c.channel)
	var res result
	if !ok {
		res.err = fmt.Errorf("%w %q", ErrNoHandler, c.channel)
	} else {
		log.Debug("bridge request")
		res.value, res.err = h(c.ctx, c.payload)
	}

	if c.reply != nil {
		c.reply <- res
		return
	}
	if res.err != nil {
		log.WithError(res.err).Warn("bridge request failed")
	}
}

// Invoke sends a request and waits for its response.
func (b *Bus) Invoke(ctx context.Context, channel string, payload any) (any, error) {
	c := &call{ctx: ctx, channel: channel, payload: payload, reply: make(chan result, 1)}
	if err := b.enqueue(ctx, c); err != nil {
		return nil, err
	}
	select {
	case res := <-c.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send delivers a request without waiting for it to be handled. Handler
// errors are logged on the serving side.
func (b *Bus) Send(ctx context.Context, channel string, payload any) error {
	// the request outlives the caller's context
	return b.enqueue(ctx, &call{ctx: context.WithoutCancel(ctx), channel: channel, payload: payload})
}

func (b *Bus) enqueue(ctx context.Context, c *call) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.calls <- c:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops Serve. Requests already dispatched run to completion.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
