// Package session owns the client-side counter and the handshake that
// seeds it. A Session starts Unsynced and becomes Synced once the
// device responds to a /sys/dev/sync POST; it never transitions back
// to Unsynced. ForceResync re-runs the handshake and overwrites the
// counter.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/philips-airctrl/airctl-go/pkg/airerr"
	"github.com/philips-airctrl/airctl-go/pkg/coaptransport"
)

// SyncPath is the fixed CoAP resource the handshake POSTs to.
const SyncPath = "/sys/dev/sync"

// Poster is the minimal transport surface Session depends on: a single
// confirmable POST. It is satisfied by *coaptransport.Engine and by
// narrow test fakes.
type Poster interface {
	Post(ctx context.Context, path string, payload []byte) (coaptransport.Response, error)
}

// State is the two-variant SessionState: Unsynced carries no counter,
// Synced carries the current 32-bit counter rendered as 8 uppercase
// hex characters.
type State int

const (
	Unsynced State = iota
	Synced
)

// Session holds the current SessionState and performs the sync
// handshake and counter rotation described in spec.md §4.2. It is not
// safe for concurrent use — the owning Client serializes access.
type Session struct {
	mu      sync.Mutex
	state   State
	counter uint32
	poster  Poster
}

// New creates an Unsynced Session bound to poster for its handshake POST.
func New(poster Poster) *Session {
	return &Session{poster: poster, state: Unsynced}
}

// State reports the current SessionState.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Counter returns the current counter as 8 uppercase hex characters.
// Only meaningful once Synced; callers should check State first.
func (s *Session) Counter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formatCounter(s.counter)
}

func formatCounter(c uint32) string {
	b := []byte{
		byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c),
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// Sync performs the handshake: generate 8 random hex chars as a seed,
// POST the seed to /sys/dev/sync, and adopt the device's response as
// the new counter. The seed sent is not the counter used afterwards —
// that value is whatever the device returns.
func (s *Session) Sync(ctx context.Context) error {
	seedBytes := make([]byte, 4)
	if _, err := rand.Read(seedBytes); err != nil {
		return airerr.New(airerr.KindHandshakeFailed, "session.Sync", err)
	}
	seed := strings.ToUpper(hex.EncodeToString(seedBytes))

	resp, err := s.poster.Post(ctx, SyncPath, []byte(seed))
	if err != nil {
		return airerr.New(airerr.KindHandshakeFailed, "session.Sync", err)
	}

	counterHex := strings.ToUpper(strings.TrimSpace(string(resp.Payload)))
	if len(counterHex) != 8 {
		return airerr.New(airerr.KindHandshakeFailed, "session.Sync", nil)
	}
	raw, err := hex.DecodeString(counterHex)
	if err != nil || len(raw) != 4 {
		return airerr.New(airerr.KindHandshakeFailed, "session.Sync", err)
	}

	counter := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])

	s.mu.Lock()
	s.counter = counter
	s.state = Synced
	s.mu.Unlock()

	return nil
}

// ForceResync unconditionally re-runs the handshake, overwriting the
// stored counter with whatever the device returns this time.
func (s *Session) ForceResync(ctx context.Context) error {
	return s.Sync(ctx)
}

// NextCounter advances the stored counter by one (wrapping modulo
// 2^32) and returns the new value as 8 uppercase hex characters. Every
// outbound encryption must call this exactly once. Requires Synced.
func (s *Session) NextCounter() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Synced {
		return "", airerr.New(airerr.KindNotSynced, "session.NextCounter", nil)
	}

	s.counter++ // wraps modulo 2^32 by virtue of the uint32 type
	return formatCounter(s.counter), nil
}
