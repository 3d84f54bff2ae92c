// Package numerator provides the domain contract for document auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Generator produces the next document number for one business day.
//
// Numbers follow the pattern <prefix><YYYYMMDD><NNNN>, e.g. RK202601150003.
// The sequence restarts at 0001 each day and is derived from the ledger
// itself, so generated numbers are only reserved once the movement row
// commits. Collisions between concurrent posts are caught by the unique
// constraint on the document number and resolved by the caller retrying
// with a fresh number.
type Generator interface {
	// NextNumber returns the next free number for the config's prefix and
	// the given business day. Implementations must read through the current
	// transaction when one is carried in ctx.
	NextNumber(ctx context.Context, cfg Config, day time.Time) (string, error)
}
