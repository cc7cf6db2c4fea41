package differ

import (
	"fmt"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
)

// Order is the global, ascending list of release identifiers that every
// version range is measured against.
type Order struct {
	index    map[string]int
	versions []string
}

// NewOrder indexes versions, which must already be ascending and unique.
func NewOrder(versions []string) (Order, error) {
	o := Order{index: make(map[string]int, len(versions)), versions: append([]string(nil), versions...)}
	for i, v := range versions {
		if _, dup := o.index[v]; dup {
			return Order{}, fmt.Errorf("%w: %s appears twice in the release order", xsderrors.ErrDuplicateRelease, v)
		}
		o.index[v] = i
	}
	return o, nil
}

// Versions returns a copy of the ordered identifiers.
func (o Order) Versions() []string {
	return append([]string(nil), o.versions...)
}

// Len returns the number of releases.
func (o Order) Len() int {
	return len(o.versions)
}

// Position returns the index of version in the order.
func (o Order) Position(version string) (int, error) {
	i, ok := o.index[version]
	if !ok {
		return 0, fmt.Errorf("%w: %q", xsderrors.ErrUnknownVersion, version)
	}
	return i, nil
}
