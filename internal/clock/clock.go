// Package clock injects the time source. Earnings snapshots, pay
// periods and approval stamps all derive from Now, so tests pin it.
package clock

import (
	"context"
	"time"
)

// Clock yields the current time for the given request context.
type Clock interface {
	Now(ctx context.Context) time.Time
}
