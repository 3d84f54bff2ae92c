package numerator

import (
	"context"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextNumberFunc func(ctx context.Context, cfg Config, day time.Time) (string, error)
}

// NextNumber implements Generator.
func (m *MockGenerator) NextNumber(ctx context.Context, cfg Config, day time.Time) (string, error) {
	if m.NextNumberFunc != nil {
		return m.NextNumberFunc(ctx, cfg, day)
	}
	return cfg.Format(day, 1), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
