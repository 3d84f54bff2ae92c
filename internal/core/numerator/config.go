package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dayLayout renders the business day inside document numbers.
const dayLayout = "20060102"

// Config holds the numbering configuration for one document kind.
type Config struct {
	// Prefix is the kind code at the start of every number (e.g. "RK")
	Prefix string

	// SeqWidth is the zero-padded width of the daily sequence (default 4)
	SeqWidth int
}

// DefaultConfig returns the standard numbering configuration.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		SeqWidth: 4,
	}
}

// DayPrefix returns the shared prefix of all numbers issued on the given
// day, e.g. "RK20260115". Used both for formatting and for the LIKE scan
// that finds the current maximum.
func (c Config) DayPrefix(day time.Time) string {
	return c.Prefix + day.UTC().Format(dayLayout)
}

// Format renders a complete document number for the day and sequence value.
func (c Config) Format(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", c.DayPrefix(day), c.SeqWidth, seq)
}

// Next computes the number that follows current, where current is the
// lexicographically greatest number already issued for the day (empty
// string when the day has no numbers yet).
func (c Config) Next(day time.Time, current string) (string, error) {
	if current == "" {
		return c.Format(day, 1), nil
	}

	prefix := c.DayPrefix(day)
	digits := strings.TrimPrefix(current, prefix)
	if digits == current || len(digits) != c.SeqWidth {
		return "", fmt.Errorf("malformed document number %q for prefix %s", current, prefix)
	}

	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed document number %q: %w", current, err)
	}

	next := seq + 1
	if next >= pow10(c.SeqWidth) {
		return "", fmt.Errorf("daily sequence exhausted for prefix %s", prefix)
	}
	return c.Format(day, next), nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
