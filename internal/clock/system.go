package clock

import (
	"context"
	"time"
)

// SystemClock is the production time source. All times are UTC.
type SystemClock struct{}

func NewSystem() Clock { return SystemClock{} }

func (SystemClock) Now(ctx context.Context) time.Time {
	return time.Now().UTC()
}

// Fixed is a stub clock for tests; Now always returns T.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now(ctx context.Context) time.Time { return f.T }
