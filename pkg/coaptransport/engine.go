// Package coaptransport adapts github.com/plgd-dev/go-coap/v3 to the
// narrow request/observe/shutdown surface the protocol client needs. It
// is the only package in this module that knows about CoAP framing,
// confirmable messages, or the RFC 7641 Observe option.
package coaptransport

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/pool"
	"github.com/plgd-dev/go-coap/v3/udp"
	udpclient "github.com/plgd-dev/go-coap/v3/udp/client"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
)

// DefaultPort is the UDP port CoAP listens on unless overridden.
const DefaultPort = 5683

// DefaultMaxAge is the cache-TTL hint used when a response carries none.
const DefaultMaxAge = 60

// Response is a transport-agnostic view of a CoAP response: the raw
// payload bytes and an optional max-age hint.
type Response struct {
	Payload []byte
	MaxAge  *uint32
}

// MaxAgeOrDefault returns MaxAge if present, else DefaultMaxAge.
func (r Response) MaxAgeOrDefault() uint32 {
	if r.MaxAge != nil {
		return *r.MaxAge
	}
	return DefaultMaxAge
}

// Transport is the surface the session and protocol client packages
// depend on. It is satisfied both by *Engine and by test fakes that
// never open a real UDP socket.
type Transport interface {
	Get(ctx context.Context, path string, observe bool) (Response, error)
	Post(ctx context.Context, path string, payload []byte) (Response, error)
	Observe(ctx context.Context, path string) (<-chan Response, func(), error)
	Shutdown() error
}

// Engine is the production Transport: one UDP connection to a single
// device, opened once and reused for the lifetime of the client.
type Engine struct {
	conn *udpclient.Conn
}

// Dial opens the UDP connection to host:port. The context governs only
// the dial itself; per-operation timeouts are supplied to Get/Post/Observe.
func Dial(ctx context.Context, host string, port int, dialTimeout time.Duration) (*Engine, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := udp.Dial(fmt.Sprintf("%s:%d", host, port), udp.WithContext(dialCtx))
	if err != nil {
		return nil, airerr.New(airerr.KindNetwork, "coaptransport.Dial", err)
	}
	return &Engine{conn: conn}, nil
}

func toResponse(m *pool.Message) (Response, error) {
	body, err := m.ReadBody()
	if err != nil {
		return Response{}, airerr.New(airerr.KindNetwork, "coaptransport.toResponse", err)
	}

	resp := Response{Payload: body}
	if v, err := m.Options().GetUint32(message.MaxAge); err == nil {
		maxAge := v
		resp.MaxAge = &maxAge
	}
	return resp, nil
}

// Get issues a GET to path. When observe is true the request carries
// Observe=0 (register-and-deregister in one shot), matching what some
// CoAP servers require for a single-shot read of an observable resource.
func (e *Engine) Get(ctx context.Context, path string, observe bool) (Response, error) {
	var (
		m   *pool.Message
		err error
	)
	if observe {
		req, reqErr := e.conn.NewGetRequest(ctx, path)
		if reqErr != nil {
			return Response{}, airerr.New(airerr.KindNetwork, "coaptransport.Get", reqErr)
		}
		req.SetObserve(0)
		m, err = e.conn.Do(req)
	} else {
		m, err = e.conn.Get(ctx, path)
	}
	if err != nil {
		return Response{}, airerr.New(airerr.KindNetwork, "coaptransport.Get", err)
	}
	return toResponse(m)
}

// Post issues a confirmable POST to path with payload as the body.
func (e *Engine) Post(ctx context.Context, path string, payload []byte) (Response, error) {
	m, err := e.conn.Post(ctx, path, message.TextPlain, bytes.NewReader(payload))
	if err != nil {
		return Response{}, airerr.New(airerr.KindNetwork, "coaptransport.Post", err)
	}
	return toResponse(m)
}

// Observe opens an Observe subscription on path. The returned channel
// yields one Response per notification and is closed only by the
// returned cancel func; it is not closed when the underlying
// observation ends on its own or the connection fails. The channel
// cannot be restarted; open a fresh Observe.
func (e *Engine) Observe(ctx context.Context, path string) (<-chan Response, func(), error) {
	out := make(chan Response, 1)

	obs, err := e.conn.Observe(ctx, path, func(m *pool.Message) {
		resp, err := toResponse(m)
		if err != nil {
			return
		}
		select {
		case out <- resp:
		case <-ctx.Done():
		}
	})
	if err != nil {
		close(out)
		return nil, func() {}, airerr.New(airerr.KindNetwork, "coaptransport.Observe", err)
	}

	cancel := func() {
		cancelCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		_ = obs.Cancel(cancelCtx)
		close(out)
	}

	return out, cancel, nil
}

// Shutdown releases the UDP socket. Safe to call more than once.
func (e *Engine) Shutdown() error {
	if e.conn == nil {
		return nil
	}
	if err := e.conn.Close(); err != nil {
		return airerr.New(airerr.KindNetwork, "coaptransport.Shutdown", err)
	}
	return nil
}
