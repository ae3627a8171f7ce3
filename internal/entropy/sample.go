// Package entropy models the raw signals a device fingerprint is built from.
//
// Every signal is a Sample: either a usable value (string or number) or one
// of two sentinels. Blocked means the capability exists but was denied or
// failed; Unavailable means the capability is absent. Sources convert their
// own failures into sentinels and never return errors to the caller.
package entropy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"devicescan/internal/hashing"
)

// Sentinel literals carried through normal data flow and hashed like any value.
const (
	BlockedLiteral     = "Blocked"
	UnavailableLiteral = "N/A"
)

// Kind identifies which branch of a Sample is active.
type Kind uint8

const (
	KindValue Kind = iota
	KindBlocked
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindBlocked:
		return "blocked"
	case KindUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Sample is a single entropy reading.
type Sample struct {
	kind     Kind
	isNumber bool
	str      string
	num      float64
}

// String returns a Sample holding a string value.
func String(s string) Sample {
	return Sample{kind: KindValue, str: s}
}

// Number returns a Sample holding a numeric value.
func Number(f float64) Sample {
	return Sample{kind: KindValue, isNumber: true, num: f}
}

// Blocked returns the sentinel for a denied or failing capability.
func Blocked() Sample {
	return Sample{kind: KindBlocked}
}

// Unavailable returns the sentinel for an absent capability.
func Unavailable() Sample {
	return Sample{kind: KindUnavailable}
}

// Kind reports the active branch.
func (s Sample) Kind() Kind { return s.kind }

// IsValue reports whether the sample carries a usable value.
func (s Sample) IsValue() bool { return s.kind == KindValue }

// IsNumber reports whether the sample carries a numeric value.
func (s Sample) IsNumber() bool { return s.kind == KindValue && s.isNumber }

// Float returns the numeric value, if any.
func (s Sample) Float() (float64, bool) {
	if !s.IsNumber() {
		return 0, false
	}
	return s.num, true
}

// String renders the sample for hashing and display. Sentinels render as
// their literals so they still take part in identifier derivation.
func (s Sample) String() string {
	switch s.kind {
	case KindBlocked:
		return BlockedLiteral
	case KindUnavailable:
		return UnavailableLiteral
	}
	if s.isNumber {
		return hashing.FormatNumber(s.num)
	}
	return s.str
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (s Sample) MarshalJSON() ([]byte, error) {
	if s.IsNumber() && !math.IsNaN(s.num) && !math.IsInf(s.num, 0) {
		return json.Marshal(s.num)
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a number, a string or null. The sentinel literals
// decode to their sentinel kinds and null decodes to Unavailable.
func (s *Sample) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Unavailable()
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("entropy: decode string sample: %w", err)
		}
		*s = Parse(str)
		return nil
	case '{', '[', 't', 'f':
		return fmt.Errorf("entropy: unsupported sample %s", string(data))
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("entropy: decode numeric sample: %w", err)
	}
	*s = Number(f)
	return nil
}

// Parse maps a raw string to a Sample, recognising the sentinel literals.
func Parse(raw string) Sample {
	switch raw {
	case BlockedLiteral:
		return Blocked()
	case UnavailableLiteral:
		return Unavailable()
	default:
		return String(raw)
	}
}

// Positive returns a numeric sample for n, or Unavailable when n is not
// positive. Browser capability probes report absent counters as zero.
func Positive(n float64) Sample {
	if n <= 0 || math.IsNaN(n) {
		return Unavailable()
	}
	return Number(n)
}
