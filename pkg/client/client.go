// Package client composes the codec, session, and transport packages
// into the device-facing operations: GetStatus, ObserveStatus,
// SetControlValue(s). It is the only package callers of this module
// should need to import for day-to-day use.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
	"github.com/philips-airctrl/airctl-go/pkg/coaptransport"
	"github.com/philips-airctrl/airctl-go/pkg/codec"
	"github.com/philips-airctrl/airctl-go/pkg/envelope"
	"github.com/philips-airctrl/airctl-go/pkg/logging"
	"github.com/philips-airctrl/airctl-go/pkg/session"
)

// Fixed CoAP resource paths (spec.md §4.4). The handshake path lives
// in the session package since only Session ever POSTs to it.
const (
	StatusPath  = "/sys/dev/status"
	ControlPath = "/sys/dev/control"
)

// DefaultRetryCount is how many retries SetControlValues makes after its
// first failed attempt (so up to DefaultRetryCount+1 attempts in all),
// absent an explicit WithRetryCount/per-call override.
const DefaultRetryCount = 5

// Config holds the options a Client is constructed with.
type Config struct {
	DialTimeout time.Duration
	RetryCount  int
	Logger      *logging.Logger
	DeviceID    string
	EnduserID   string
}

func defaultConfig() Config {
	return Config{
		DialTimeout: 5 * time.Second,
		RetryCount:  DefaultRetryCount,
	}
}

// Option configures a Client at construction time.
type Option func(*Config)

// WithDialTimeout overrides the default 5s UDP dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Config) { c.DialTimeout = d }
}

// WithRetryCount overrides the default SetControlValues retry budget.
func WithRetryCount(n int) Option {
	return func(c *Config) { c.RetryCount = n }
}

// WithLogger overrides the package default logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Client is the device-facing protocol client. It owns exactly one
// Session and one transport for its lifetime, and serializes every
// operation through mu — concurrent writes would both claim counters
// the device may accept out of order, causing a permanent desync
// (spec.md §5).
type Client struct {
	host string
	port int

	mu        sync.Mutex
	transport coaptransport.Transport
	session   *session.Session
	cfg       Config
	logger    *logging.Logger
}

// Create dials host:port and returns a Client whose Session starts
// Unsynced — the first operation performs the handshake lazily.
func Create(ctx context.Context, host string, port int, opts ...Option) (*Client, error) {
	if port == 0 {
		port = coaptransport.DefaultPort
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	engine, err := coaptransport.Dial(ctx, host, port, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.WithHost(fmt.Sprintf("%s:%d", host, port))

	return &Client{
		host:      host,
		port:      port,
		transport: engine,
		session:   session.New(engine),
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Shutdown releases the underlying UDP socket. Never returns an error
// to the caller in the sense of a recoverable failure — transport
// errors during teardown are logged, not raised, matching spec.md §7's
// "shutdown() must not raise" policy. The non-nil return is kept only
// so callers that want to observe it can.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.transport.Shutdown(); err != nil {
		c.logger.Warn("shutdown encountered an error", logging.Fields{"error": err.Error()})
		return err
	}
	return nil
}

func (c *Client) ensureSynced(ctx context.Context) error {
	if c.session.State() == session.Synced {
		return nil
	}
	if err := c.session.Sync(ctx); err != nil {
		return err
	}
	c.logger.Info("handshake complete")
	return nil
}

// decodeStatus verifies, decrypts, and parses a device status response.
func (c *Client) decodeStatus(resp coaptransport.Response) (map[string]any, uint32, error) {
	counterHex, ciphertextHex, err := codec.Verify(string(resp.Payload))
	if err != nil {
		return nil, 0, err
	}
	plaintext, err := codec.Decrypt(counterHex, ciphertextHex)
	if err != nil {
		return nil, 0, err
	}
	reported, err := envelope.ParseStatus([]byte(plaintext))
	if err != nil {
		return nil, 0, err
	}
	return reported, resp.MaxAgeOrDefault(), nil
}

// GetStatus performs a one-shot read of device state: ensures the
// session is synced, issues a register-and-deregister GET (Observe=0),
// and returns the decoded "reported" mapping and max-age hint. Every
// error here propagates to the caller (spec.md §7).
func (c *Client) GetStatus(ctx context.Context) (map[string]any, uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSynced(ctx); err != nil {
		return nil, 0, err
	}

	resp, err := c.transport.Get(ctx, StatusPath, true)
	if err != nil {
		return nil, 0, airerr.New(airerr.KindNetwork, "client.GetStatus", err)
	}

	return c.decodeStatus(resp)
}

// StatusEvent is one element of an ObserveStatus stream.
type StatusEvent struct {
	Seq    uint64
	Status map[string]any
	MaxAge uint32
}

// ObserveStatus opens a long-lived Observe subscription on the status
// resource. Frames that fail verification/decryption are logged and
// dropped — the stream is not terminated by a bad frame; it ends when
// the transport closes its channel (for the production Engine, only
// when the returned cancel function is called). The
// returned stream is single-consumer and not restartable; call the
// returned cancel function to tear it down, then open a new one to
// resume.
func (c *Client) ObserveStatus(ctx context.Context) (<-chan StatusEvent, func(), error) {
	c.mu.Lock()
	err := c.ensureSynced(ctx)
	c.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	raw, cancel, err := c.transport.Observe(ctx, StatusPath)
	if err != nil {
		return nil, nil, airerr.New(airerr.KindNetwork, "client.ObserveStatus", err)
	}

	out := make(chan StatusEvent)
	go func() {
		defer close(out)
		var seq uint64
		for resp := range raw {
			reported, maxAge, decodeErr := c.decodeStatus(resp)
			if decodeErr != nil {
				c.logger.Warn("dropping unparseable observation frame", logging.Fields{"error": decodeErr.Error()})
				continue
			}
			seq++
			select {
			case out <- StatusEvent{Seq: seq, Status: reported, MaxAge: maxAge}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

// SetControlValue is sugar for SetControlValues with a single key.
func (c *Client) SetControlValue(ctx context.Context, key string, value any) (bool, error) {
	return c.SetControlValues(ctx, map[string]any{key: value})
}

// SetControlValues writes data to the device, retrying (and, unless
// disabled, resyncing) on failure up to c.cfg.RetryCount times. A
// resync consumes exactly one retry slot (spec.md §4.4 tie-breaks). A
// network error during a write attempt is treated identically to the
// device returning a non-success status: both just consume a retry.
func (c *Client) SetControlValues(ctx context.Context, data map[string]any) (bool, error) {
	return c.setControlValues(ctx, data, c.cfg.RetryCount, true)
}

// SetControlValuesWithOptions exposes the retryCount/resync knobs spec.md
// §4.4 describes explicitly, for callers that want non-default retry
// behavior (e.g. the discovery scanner, which may want resync=false to
// avoid re-handshaking devices it is only probing).
func (c *Client) SetControlValuesWithOptions(ctx context.Context, data map[string]any, retryCount int, resync bool) (bool, error) {
	return c.setControlValues(ctx, data, retryCount, resync)
}

func (c *Client) setControlValues(ctx context.Context, data map[string]any, retryCount int, resync bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSynced(ctx); err != nil {
		return false, err
	}

	payload, err := envelope.BuildControl(c.cfg.DeviceID, c.cfg.EnduserID, data)
	if err != nil {
		return false, err
	}

	for attempt := 0; attempt <= retryCount; attempt++ {
		ok, err := c.attemptWrite(ctx, payload)
		if err == nil && ok {
			return true, nil
		}

		if attempt == retryCount {
			break
		}

		if resync {
			if resyncErr := c.session.ForceResync(ctx); resyncErr != nil {
				c.logger.Warn("resync failed during write retry", logging.Fields{"error": resyncErr.Error()})
			}
		}
	}

	return false, nil
}

// attemptWrite performs exactly one counter-increment, encrypt, POST,
// decode cycle.
func (c *Client) attemptWrite(ctx context.Context, payload []byte) (bool, error) {
	counterHex, err := c.session.NextCounter()
	if err != nil {
		return false, err
	}

	ciphertextHex, err := codec.Encrypt(counterHex, string(payload))
	if err != nil {
		return false, err
	}
	frame := codec.BuildFrame(counterHex, ciphertextHex)

	resp, err := c.transport.Post(ctx, ControlPath, []byte(frame))
	if err != nil {
		return false, airerr.New(airerr.KindNetwork, "client.attemptWrite", err)
	}

	// The device's write acknowledgement is plaintext JSON, not an
	// encrypted frame — do not attempt to decrypt it (spec.md §4.4).
	result, err := envelope.ParseWriteResult(resp.Payload)
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, airerr.New(airerr.KindWriteRejected, "client.attemptWrite", nil)
	}
	return true, nil
}
