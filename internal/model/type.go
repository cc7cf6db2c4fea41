package model

import (
	"fmt"
	"slices"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
)

// TypeKind discriminates named type definitions.
type TypeKind uint8

const (
	// KindSimple is a simple type.
	KindSimple TypeKind = iota + 1
	// KindComplex is a complex type.
	KindComplex
)

// String returns the declaration tag for the kind.
func (k TypeKind) String() string {
	switch k {
	case KindSimple:
		return "simpleType"
	case KindComplex:
		return "complexType"
	default:
		return "unknown"
	}
}

// Type is a named type definition: *SimpleType or *ComplexType.
type Type interface {
	TypeName() string
	BaseName() string
	TypeKind() TypeKind
	isType()
}

func as[T any](value any) (T, bool) {
	v, ok := value.(T)
	return v, ok
}

// AsSimpleType performs a type assertion to *SimpleType.
func AsSimpleType(t Type) (*SimpleType, bool) {
	return as[*SimpleType](t)
}

// AsComplexType performs a type assertion to *ComplexType.
func AsComplexType(t Type) (*ComplexType, bool) {
	return as[*ComplexType](t)
}

// SimpleType is a leaf type: a base plus restriction facets and/or enumeration literals.
type SimpleType struct {
	Restrictions map[string]string
	Name         string
	Base         string
	facetOrder   []string
	Enums        []string
}

// NewSimpleType returns a simple type without facets.
func NewSimpleType(name, base string) *SimpleType {
	return &SimpleType{Name: name, Base: base, Restrictions: make(map[string]string)}
}

// TypeName implements Type.
func (s *SimpleType) TypeName() string { return s.Name }

// BaseName implements Type.
func (s *SimpleType) BaseName() string { return s.Base }

// TypeKind implements Type.
func (*SimpleType) TypeKind() TypeKind { return KindSimple }
func (*SimpleType) isType()            {}

// IsEnum reports whether the type enumerates literals.
func (s *SimpleType) IsEnum() bool {
	return len(s.Enums) != 0
}

// AddRestriction sets a facet; a repeated facet overwrites the earlier value.
func (s *SimpleType) AddRestriction(facet, value string) {
	if s.Restrictions == nil {
		s.Restrictions = make(map[string]string)
	}
	if _, ok := s.Restrictions[facet]; !ok {
		s.facetOrder = append(s.facetOrder, facet)
	}
	s.Restrictions[facet] = value
}

// AddEnumeration appends a literal.
func (s *SimpleType) AddEnumeration(value string) {
	s.Enums = append(s.Enums, value)
}

// Facets returns facet names in first-declared order.
func (s *SimpleType) Facets() []string {
	out := make([]string, 0, len(s.Restrictions))
	for _, f := range s.facetOrder {
		if _, ok := s.Restrictions[f]; ok {
			out = append(out, f)
		}
	}
	if len(out) == len(s.Restrictions) {
		return out
	}
	// Restrictions populated directly by callers have no recorded order.
	var extra []string
	for f := range s.Restrictions {
		if !slices.Contains(out, f) {
			extra = append(extra, f)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// MergeFrom folds other's facets and literals into s. Facets are last-write-wins
// per key; literals keep first-seen order without duplicates.
func (s *SimpleType) MergeFrom(other *SimpleType) {
	for _, facet := range other.Facets() {
		s.AddRestriction(facet, other.Restrictions[facet])
	}
	for _, literal := range other.Enums {
		if !slices.Contains(s.Enums, literal) {
			s.AddEnumeration(literal)
		}
	}
}

// Clone returns a deep copy.
func (s *SimpleType) Clone() *SimpleType {
	clone := &SimpleType{
		Name:         s.Name,
		Base:         s.Base,
		Restrictions: make(map[string]string, len(s.Restrictions)),
		facetOrder:   slices.Clone(s.facetOrder),
		Enums:        slices.Clone(s.Enums),
	}
	for k, v := range s.Restrictions {
		clone.Restrictions[k] = v
	}
	return clone
}

// ComplexType is a composite type, or the shape of a top-level element declaration.
type ComplexType struct {
	Name  string
	Base  string
	Items []Item
}

// NewComplexType returns a complex type without members.
func NewComplexType(name, base string) *ComplexType {
	return &ComplexType{Name: name, Base: base}
}

// TypeName implements Type.
func (c *ComplexType) TypeName() string { return c.Name }

// BaseName implements Type.
func (c *ComplexType) BaseName() string { return c.Base }

// TypeKind implements Type.
func (*ComplexType) TypeKind() TypeKind { return KindComplex }
func (*ComplexType) isType()            {}

// AddItem appends a member and reports whether it was kept. An attribute or
// element whose role and name match an existing member is dropped in favor of
// the first; groups are always appended.
func (c *ComplexType) AddItem(item Item) bool {
	if item.ItemKind() != ItemGroup {
		for _, existing := range c.Items {
			if sameMember(existing, item) {
				return false
			}
		}
	}
	c.Items = append(c.Items, item)
	return true
}

// Flatten returns a copy whose members are the leaves of every group, in
// depth-first document order, with the groups removed.
func (c *ComplexType) Flatten() (*ComplexType, error) {
	var leaves []Item
	if err := collectLeaves(c.Items, make(map[*Group]bool), &leaves); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", c.Name, err)
	}
	flat := NewComplexType(c.Name, c.Base)
	for _, leaf := range leaves {
		flat.AddItem(leaf.cloneItem())
	}
	return flat, nil
}

// IsFlat reports whether no member is a group.
func (c *ComplexType) IsFlat() bool {
	for _, item := range c.Items {
		if item.ItemKind() == ItemGroup {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *ComplexType) Clone() *ComplexType {
	clone := NewComplexType(c.Name, c.Base)
	clone.Items = make([]Item, len(c.Items))
	for i, item := range c.Items {
		clone.Items[i] = item.cloneItem()
	}
	return clone
}

// CloneType deep-copies any named type.
func CloneType(t Type) Type {
	switch t.TypeKind() {
	case KindSimple:
		return t.(*SimpleType).Clone()
	case KindComplex:
		return t.(*ComplexType).Clone()
	default:
		return t
	}
}

func collectLeaves(items []Item, active map[*Group]bool, out *[]Item) error {
	for _, item := range items {
		switch item.ItemKind() {
		case ItemAttribute, ItemElement:
			*out = append(*out, item)
		case ItemGroup:
			group := item.(*Group)
			if active[group] {
				return xsderrors.ErrGroupCycle
			}
			active[group] = true
			if err := collectLeaves(group.Items, active, out); err != nil {
				return err
			}
			delete(active, group)
		}
	}
	return nil
}
