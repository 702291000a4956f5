package resolver

import (
	"fmt"
	"runtime"
	"time"

	"github.com/OCAP2/aar/pkg/core"
)

// Options are the matching policy inputs.
type Options struct {
	// WindowAA, WindowAG and WindowUnknown bound how long after firing a
	// declared-target or heuristic match may occur, per shot domain.
	WindowAA      time.Duration
	WindowAG      time.Duration
	WindowUnknown time.Duration

	// RemovalGrace extends the window past the time the weapon left the log.
	// The target's destruction is often recorded a frame or more after the
	// munition disappears at impact.
	RemovalGrace time.Duration

	// SplashWindow and SplashRadius bound extra kills after a hit.
	SplashWindow time.Duration
	SplashRadius float64

	// KillTolerance lets a destruction logged slightly before the hit still
	// count as its kill.
	KillTolerance time.Duration
	// KillLinkWindow bounds the delay between a hit and its kill. Zero is unbounded.
	KillLinkWindow time.Duration

	// BucketWidth is the width of the time index buckets.
	BucketWidth time.Duration
	// Workers bounds heuristic proposal goroutines. Zero uses runtime.NumCPU.
	Workers int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		WindowAA:       60 * time.Second,
		WindowAG:       120 * time.Second,
		WindowUnknown:  60 * time.Second,
		RemovalGrace:   time.Second,
		SplashWindow:   2 * time.Second,
		SplashRadius:   150,
		KillTolerance:  250 * time.Millisecond,
		KillLinkWindow: 0,
		BucketWidth:    10 * time.Second,
		Workers:        0,
	}
}

// Validate rejects policies that cannot produce meaningful chains.
func (o Options) Validate() error {
	switch {
	case o.WindowAA <= 0:
		return fmt.Errorf("%w: AA window must be positive, got %s", ErrInvalidOptions, o.WindowAA)
	case o.WindowAG <= 0:
		return fmt.Errorf("%w: AG window must be positive, got %s", ErrInvalidOptions, o.WindowAG)
	case o.WindowUnknown <= 0:
		return fmt.Errorf("%w: unknown-domain window must be positive, got %s", ErrInvalidOptions, o.WindowUnknown)
	case o.RemovalGrace < 0:
		return fmt.Errorf("%w: removal grace must not be negative, got %s", ErrInvalidOptions, o.RemovalGrace)
	case o.SplashWindow < 0:
		return fmt.Errorf("%w: splash window must not be negative, got %s", ErrInvalidOptions, o.SplashWindow)
	case o.SplashRadius < 0:
		return fmt.Errorf("%w: splash radius must not be negative, got %g", ErrInvalidOptions, o.SplashRadius)
	case o.KillTolerance < 0:
		return fmt.Errorf("%w: kill tolerance must not be negative, got %s", ErrInvalidOptions, o.KillTolerance)
	case o.KillLinkWindow < 0:
		return fmt.Errorf("%w: kill link window must not be negative, got %s", ErrInvalidOptions, o.KillLinkWindow)
	case o.BucketWidth <= 0:
		return fmt.Errorf("%w: bucket width must be positive, got %s", ErrInvalidOptions, o.BucketWidth)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Window returns the matching window for a shot domain.
func (o Options) Window(d core.Domain) time.Duration {
	switch d {
	case core.DomainAA:
		return o.WindowAA
	case core.DomainAG:
		return o.WindowAG
	default:
		return o.WindowUnknown
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}
