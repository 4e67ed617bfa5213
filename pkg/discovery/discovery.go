// Package discovery defines the shape the out-of-scope network-range
// scanner uses to probe candidate devices. It contains no scanning
// logic of its own — per spec.md §1 the scanner is an external
// collaborator modeled here only as an interface — but it does
// exercise the one requirement spec.md §6 places on the core because
// of that collaborator: tolerating being created and shut down at high
// rate without leaking resources.
package discovery

import (
	"context"
	"time"

	"github.com/philips-airctrl/airctl-go/pkg/client"
)

// Result is what a single probe of one candidate address yields.
type Result struct {
	Host      string
	Reachable bool
	Status    map[string]any
	Err       error
}

// ProbeOne opens a short-lived Client against host:port, attempts a
// single GetStatus, and always shuts the client down before returning
// — regardless of which branch it took. This is the pattern the real
// scanner repeats across an entire subnet; ProbeOne is the unit it
// would call once per candidate IP.
func ProbeOne(ctx context.Context, host string, port int, timeout time.Duration) Result {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.Create(probeCtx, host, port, client.WithDialTimeout(timeout))
	if err != nil {
		return Result{Host: host, Reachable: false, Err: err}
	}
	defer c.Shutdown()

	status, _, err := c.GetStatus(probeCtx)
	if err != nil {
		return Result{Host: host, Reachable: false, Err: err}
	}
	return Result{Host: host, Reachable: true, Status: status}
}
