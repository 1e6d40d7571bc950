// Package numerator provides domain contracts for document and journal numbering.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Journal and document prefixes.
const (
	PrefixInvoice  = "FT"
	PrefixPurchase = "CP"
	PrefixExpense  = "DP"
	PrefixGeneral  = "LC"
)

// Config holds numbering configuration.
type Config struct {
	// Scope isolates counters, normally the tenant ID
	Scope string

	// Prefix added to all numbers (e.g., "FT", "CP")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year" or "never"
	ResetPeriod string
}

// DefaultConfig returns the PREFIX/YYYY/NNNNN layout reset every year.
func DefaultConfig(scope, prefix string) Config {
	return Config{
		Scope:       scope,
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Key identifies the counter row for cfg in period.
func (c Config) Key(period time.Time) string {
	base := c.Prefix
	if c.ResetPeriod == "year" {
		base = fmt.Sprintf("%s/%s", c.Prefix, period.Format("2006"))
	}
	if c.Scope == "" {
		return base
	}
	return c.Scope + ":" + base
}

// Format creates the final number string.
func (c Config) Format(period time.Time, num int64) string {
	padWidth := c.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if c.IncludeYear {
		return fmt.Sprintf("%s/%s/%0*d", c.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s/%0*d", c.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndex(formatted, "/")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	n, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
