package differ

import (
	"fmt"
	"slices"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/occurs"
)

// Role tags a recorded spelling with the part it played. The zero value is
// the entity's own name.
type Role uint8

const (
	RoleNone Role = iota
	RoleElement
	RoleAttribute
	RoleEnumLiteral
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return ""
	case RoleElement:
		return "element"
	case RoleAttribute:
		return "attribute"
	case RoleEnumLiteral:
		return "enumLiteral"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*r = RoleNone
	case "element":
		*r = RoleElement
	case "attribute":
		*r = RoleAttribute
	case "enumLiteral":
		*r = RoleEnumLiteral
	default:
		return fmt.Errorf("unknown role %q", text)
	}
	return nil
}

// NameVersion is one spelling of an entity over the closed release range [Start, End].
type NameVersion struct {
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Kind  Role   `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func (nv NameVersion) sameSpelling(other NameVersion) bool {
	return nv.Name == other.Name && nv.Kind == other.Kind
}

// VersionedItem is the spelling history of one logical entity together with
// the attributes of its newest absorbed declaration.
type VersionedItem struct {
	DefaultValue *string
	MinOccurs    *int
	MaxOccurs    *occurs.Occurs
	Required     *bool
	Canonical    string
	DeclaredType string
	Names        []NameVersion
}

// AddName records name for a single release. Recording the same name, role
// and release twice is a no-op.
func (v *VersionedItem) AddName(name, version string, kind Role) {
	v.addRange(NameVersion{Name: name, Start: version, End: version, Kind: kind})
}

func (v *VersionedItem) addRange(nv NameVersion) {
	for _, existing := range v.Names {
		if existing == nv {
			return
		}
	}
	v.Names = append(v.Names, nv)
}

// Merge coalesces the ranges of each spelling into maximal runs that are
// contiguous in order, then sorts the runs by start. Spellings sharing a start
// keep their first-recorded order. A release missing from the history breaks
// a run even when the same spelling reappears later.
func (v *VersionedItem) Merge(order Order) error {
	if len(v.Names) == 0 {
		return nil
	}
	pos := make(map[string]int, len(v.Names)+1)
	for _, nv := range v.Names {
		for _, version := range []string{nv.Start, nv.End} {
			i, err := order.Position(version)
			if err != nil {
				return err
			}
			pos[version] = i
		}
	}

	type spelling struct {
		name string
		kind Role
	}
	var spellings []spelling
	groups := make(map[spelling][]NameVersion)
	for _, nv := range v.Names {
		key := spelling{name: nv.Name, kind: nv.Kind}
		if _, ok := groups[key]; !ok {
			spellings = append(spellings, key)
		}
		groups[key] = append(groups[key], nv)
	}

	merged := make([]NameVersion, 0, len(v.Names))
	for _, key := range spellings {
		ranges := groups[key]
		slices.SortStableFunc(ranges, func(a, b NameVersion) int {
			return pos[a.Start] - pos[b.Start]
		})
		run := ranges[0]
		for _, next := range ranges[1:] {
			if pos[next.Start] <= pos[run.End]+1 {
				if pos[next.End] > pos[run.End] {
					run.End = next.End
				}
				continue
			}
			merged = append(merged, run)
			run = next
		}
		merged = append(merged, run)
	}
	slices.SortStableFunc(merged, func(a, b NameVersion) int {
		return pos[a.Start] - pos[b.Start]
	})
	v.Names = merged
	return nil
}

// checkInvariants reports a history that is unsorted or still holds two
// ranges of one spelling that overlap or touch.
func (v *VersionedItem) checkInvariants(order Order) error {
	type span struct{ start, end int }
	spans := make([]span, len(v.Names))
	prevStart := -1
	for i, nv := range v.Names {
		start, err := order.Position(nv.Start)
		if err != nil {
			return err
		}
		end, err := order.Position(nv.End)
		if err != nil {
			return err
		}
		if end < start {
			return fmt.Errorf("%w: range %s-%s of %q is reversed", xsderrors.ErrInvariant, nv.Start, nv.End, nv.Name)
		}
		if start < prevStart {
			return fmt.Errorf("%w: range %s-%s of %q is out of order", xsderrors.ErrInvariant, nv.Start, nv.End, nv.Name)
		}
		prevStart = start
		spans[i] = span{start: start, end: end}
	}
	for i, a := range v.Names {
		for j := i + 1; j < len(v.Names); j++ {
			b := v.Names[j]
			if !a.sameSpelling(b) {
				continue
			}
			if spans[j].start <= spans[i].end+1 && spans[i].start <= spans[j].end+1 {
				return fmt.Errorf("%w: ranges %s-%s and %s-%s of %q are mergeable",
					xsderrors.ErrInvariant, a.Start, a.End, b.Start, b.End, a.Name)
			}
		}
	}
	return nil
}

// ChildKey identifies a member of a composite. Element and attribute members
// with the same name are distinct, as are enumeration literals.
type ChildKey struct {
	Name string
	Role Role
}

// String renders the key as "role:name".
func (k ChildKey) String() string {
	return k.Role.String() + ":" + k.Name
}

func normalizeChildKey(k ChildKey) ChildKey {
	if k.Role == RoleEnumLiteral {
		return k
	}
	return ChildKey{Name: names.Key(k.Name), Role: k.Role}
}

// VersionedComposite is a versioned type or enumeration plus the histories of its members.
type VersionedComposite struct {
	Children *names.Ordered[ChildKey, *VersionedItem]
	VersionedItem
}

func newComposite(canonical string) *VersionedComposite {
	return &VersionedComposite{
		VersionedItem: VersionedItem{Canonical: canonical},
		Children:      names.NewOrdered[ChildKey, *VersionedItem](normalizeChildKey),
	}
}

// Child returns the member history stored under key.
func (c *VersionedComposite) Child(key ChildKey) (*VersionedItem, bool) {
	return c.Children.Get(key)
}

// child returns the member history stored under key, creating it if absent.
func (c *VersionedComposite) child(key ChildKey) *VersionedItem {
	if item, ok := c.Children.Get(key); ok {
		return item
	}
	item := &VersionedItem{Canonical: key.Name}
	c.Children.Set(key, item)
	return item
}

// Merge compresses the composite's own history, then every member's.
func (c *VersionedComposite) Merge(order Order) error {
	if err := c.VersionedItem.Merge(order); err != nil {
		return err
	}
	for key, child := range c.Children.All() {
		if err := child.Merge(order); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (c *VersionedComposite) checkInvariants(order Order) error {
	if err := c.VersionedItem.checkInvariants(order); err != nil {
		return err
	}
	for key, child := range c.Children.All() {
		if err := child.checkInvariants(order); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}
