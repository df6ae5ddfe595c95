// Package device provides the host-side stand-ins for device services: the
// position source and the connectivity check.
package device

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// StaticLocator reports a configured position. A nil Position means the
// position is unavailable, as when permission is denied.
type StaticLocator struct {
	Position *weather.Coordinates
}

// CurrentPosition implements weather.Locator.
func (l StaticLocator) CurrentPosition(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}
	if l.Position == nil {
		return weather.Coordinates{}, fmt.Errorf("%w: no device position configured", weather.ErrLocationUnavailable)
	}
	return *l.Position, nil
}

// DialCheck reports connectivity by opening a TCP connection to Address.
type DialCheck struct {
	Address string        // host:port
	Timeout time.Duration // 0 = no timeout
}

// Connected implements weather.NetworkStatus.
func (p DialCheck) Connected(ctx context.Context) bool {
	if p.Address == "" {
		return true
	}
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
