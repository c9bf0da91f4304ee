// Package asyncclient wraps h2core.ClientConnection as the higher-level
// async client the core's concurrency model requires (§5/§9): one service
// goroutine owns the connection and drives it in a loop, pulling requests
// off a bounded queue and pushing decoded responses to a Delegate, while a
// reader goroutine it starts pumps inbound frames. Producers on other
// goroutines never touch the connection directly.
package asyncclient

import (
	"context"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/hueristiq/h2core"
)

// Delegate receives the events the service goroutine produces. OnResponse
// is called once per completed request; OnHalted is called once at
// shutdown with a summary of pending and queued counts so the caller can
// drain.
type Delegate interface {
	OnResponse(resp h2core.Response, userTag interface{})
	OnHalted(state HaltState)
}

// HaltState summarizes outstanding work at shutdown.
type HaltState struct {
	// Queued is the number of requests still sitting in the send queue,
	// never handed to the connection.
	Queued int
	// Pending is the number of streams the connection opened but never
	// saw close out before shutdown.
	Pending int
	// Cause is the error that triggered shutdown, if any (nil on a clean
	// Close).
	Cause error
}

type outboundRequest struct {
	headers h2core.Headers
	body    []byte
	userTag interface{}
}

// Client is the async client wrapper (§5/§9's expansion). Send enqueues a
// request from any goroutine; only the goroutines Run starts call into the
// underlying ClientConnection: the service loop sends requests, and a reader
// goroutine it spawns calls Pump.
type Client struct {
	cc *h2core.ClientConnection

	queue  chan outboundRequest
	done   chan struct{}
	cancel context.CancelFunc

	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger overrides the default logger, which writes to os.Stderr.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithQueueSize sets the bounded send queue's capacity. Default 64.
func WithQueueSize(n int) Option {
	return func(c *Client) { c.queue = make(chan outboundRequest, n) }
}

// NewClient wraps cc. Call Run to start the service goroutine before
// calling Send.
func NewClient(cc *h2core.ClientConnection, opts ...Option) *Client {
	c := &Client{
		cc:     cc,
		queue:  make(chan outboundRequest, 64),
		done:   make(chan struct{}),
		logger: log.New(os.Stderr, "h2core/asyncclient: ", log.LstdFlags),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run starts the service goroutine under an errgroup.Group derived from
// ctx, and blocks until it exits: either ctx is cancelled, Pump or
// SendRequest fails, or Close is called. On return, delegate.OnHalted has already been called
// exactly once.
//
// Run is meant to be called from its own top-level goroutine by the
// caller; Send and Close are safe to call concurrently with Run.
func (c *Client) Run(ctx context.Context, delegate Delegate) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.serviceLoop(ctx, delegate)
	})

	err := g.Wait()
	close(c.done)

	return err
}

// Send enqueues a request for the service goroutine to send. It blocks
// until there is room in the bounded queue, ctx is done, or the client has
// been closed.
func (c *Client) Send(ctx context.Context, hs h2core.Headers, body []byte, userTag interface{}) error {
	req := outboundRequest{headers: hs, body: body, userTag: userTag}

	select {
	case c.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return h2core.ErrConnClosed
	}
}

// Close cancels the service goroutine's context; the goroutine then sends
// GOAWAY if possible and exits. Close does not wait for that. Cancellation
// is coarse (§5): requests still queued when the loop exits are not sent and
// are counted in HaltState.Queued.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) serviceLoop(ctx context.Context, delegate Delegate) error {
	pending := 0
	var cause error

	defer func() {
		_ = c.cc.Connection().Close(h2core.ErrCodeNoError, 0)
		state := HaltState{
			Queued:  len(c.queue),
			Pending: pending,
			Cause:   cause,
		}
		c.logger.Printf("halted: queued=%d pending=%d cause=%v", state.Queued, state.Pending, state.Cause)
		delegate.OnHalted(state)
	}()

	type pumpResult struct {
		harvested []h2core.HarvestedResponse
		err       error
	}

	frames := make(chan pumpResult, 1)
	pumpNow := make(chan struct{}, 1)
	pumpNow <- struct{}{}

	go func() {
		for range pumpNow {
			harvested, err := c.cc.Pump()
			frames <- pumpResult{harvested: harvested, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			cause = ctx.Err()
			return nil

		case req := <-c.queue:
			if _, err := c.cc.SendRequest(req.headers, req.body, req.userTag); err != nil {
				cause = err
				return err
			}
			pending++

		case res := <-frames:
			if res.err != nil {
				cause = res.err
				return res.err
			}

			for _, harvested := range res.harvested {
				pending--
				delegate.OnResponse(harvested.Response, harvested.UserTag)
			}

			select {
			case pumpNow <- struct{}{}:
			default:
			}
		}
	}
}
