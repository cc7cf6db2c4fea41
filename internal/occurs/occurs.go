package occurs

import (
	"fmt"
	"strconv"
	"strings"
)

// UnboundedSentinel is the numeric encoding of maxOccurs="unbounded" (2^31-1)
// used by downstream consumers that expect a plain integer.
const UnboundedSentinel = 1<<31 - 1

// Occurs is an occurrence bound: either a concrete count or unbounded.
type Occurs struct {
	value     int
	unbounded bool
}

// Unbounded is the unbounded occurrence value.
var Unbounded = Occurs{value: UnboundedSentinel, unbounded: true}

// FromInt returns a bounded occurrence. The sentinel value maps to Unbounded.
func FromInt(n int) Occurs {
	if n == UnboundedSentinel {
		return Unbounded
	}
	return Occurs{value: n}
}

// Parse reads an occurrence attribute value; "unbounded" is accepted only when allowUnbounded is set.
func Parse(value string, allowUnbounded bool) (Occurs, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Occurs{}, fmt.Errorf("occurrence value is empty")
	}
	if value == "unbounded" {
		if !allowUnbounded {
			return Occurs{}, fmt.Errorf("occurrence value cannot be 'unbounded'")
		}
		return Unbounded, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return Occurs{}, fmt.Errorf("invalid occurrence value %q", value)
	}
	if n < 0 {
		return Occurs{}, fmt.Errorf("negative occurrence value %q", value)
	}
	return FromInt(n), nil
}

// IsUnbounded reports whether the bound is unbounded.
func (o Occurs) IsUnbounded() bool {
	return o.unbounded
}

// Int returns the count, or UnboundedSentinel for unbounded.
func (o Occurs) Int() int {
	if o.unbounded {
		return UnboundedSentinel
	}
	return o.value
}

// Equal reports whether both bounds are identical.
func (o Occurs) Equal(other Occurs) bool {
	return o.unbounded == other.unbounded && o.Int() == other.Int()
}

// String renders the bound as it appears in a schema document.
func (o Occurs) String() string {
	if o.unbounded {
		return "unbounded"
	}
	return strconv.Itoa(o.value)
}

// MarshalText implements encoding.TextMarshaler.
func (o Occurs) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Occurs) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text), true)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
