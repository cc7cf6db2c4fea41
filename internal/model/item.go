package model

import (
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/occurs"
)

// ItemKind discriminates the members of a complex type's content.
type ItemKind uint8

const (
	// ItemAttribute is an attribute member.
	ItemAttribute ItemKind = iota + 1
	// ItemElement is a child element member.
	ItemElement
	// ItemGroup is a sequence/all/choice grouping.
	ItemGroup
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemAttribute:
		return "attribute"
	case ItemElement:
		return "element"
	case ItemGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Item is a member of complex content. The set of implementations is closed:
// *Attribute, *ChildElement and *Group.
type Item interface {
	ItemKind() ItemKind
	cloneItem() Item
	isItem()
}

// Attribute is an attribute declared on a complex type.
type Attribute struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
	Required   bool
}

// ItemKind implements Item.
func (*Attribute) ItemKind() ItemKind { return ItemAttribute }
func (*Attribute) isItem()            {}
func (a *Attribute) cloneItem() Item {
	clone := *a
	return &clone
}

// ChildElement is an element particle declared inside complex content.
type ChildElement struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
	MinOccurs  int
	MaxOccurs  occurs.Occurs
}

// NewChildElement returns an element with the default occurrence bounds (0..1).
func NewChildElement(name, typeName string) *ChildElement {
	return &ChildElement{Name: name, Type: typeName, MinOccurs: 0, MaxOccurs: occurs.FromInt(1)}
}

// ItemKind implements Item.
func (*ChildElement) ItemKind() ItemKind { return ItemElement }
func (*ChildElement) isItem()            {}
func (e *ChildElement) cloneItem() Item {
	clone := *e
	return &clone
}

// GroupKind is the compositor of a model group.
type GroupKind uint8

const (
	// Sequence requires members in order.
	Sequence GroupKind = iota + 1
	// All allows members in any order.
	All
	// Choice allows one member.
	Choice
)

// String returns the tag name of the compositor.
func (k GroupKind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case All:
		return "all"
	case Choice:
		return "choice"
	default:
		return "unknown"
	}
}

// ParseGroupKind maps a compositor tag name to its kind.
func ParseGroupKind(tag string) (GroupKind, bool) {
	switch tag {
	case "sequence":
		return Sequence, true
	case "all":
		return All, true
	case "choice":
		return Choice, true
	default:
		return 0, false
	}
}

// Group is a model group. Members may be any Item, including nested groups.
type Group struct {
	Items []Item
	Kind  GroupKind
}

// NewGroup returns an empty group of kind.
func NewGroup(kind GroupKind) *Group {
	return &Group{Kind: kind}
}

// ItemKind implements Item.
func (*Group) ItemKind() ItemKind { return ItemGroup }
func (*Group) isItem()            {}
func (g *Group) cloneItem() Item {
	clone := &Group{Kind: g.Kind, Items: make([]Item, len(g.Items))}
	for i, item := range g.Items {
		clone.Items[i] = item.cloneItem()
	}
	return clone
}

// AddItem appends a member. Groups keep every member they are given.
func (g *Group) AddItem(item Item) {
	g.Items = append(g.Items, item)
}

// AllChildren returns the leaf members of the group and its nested groups in
// depth-first document order. A group that contains itself is reported as
// ErrGroupCycle.
func (g *Group) AllChildren() ([]Item, error) {
	var leaves []Item
	err := collectLeaves(g.Items, map[*Group]bool{g: true}, &leaves)
	return leaves, err
}

// ItemName returns the declared name of an attribute or element member.
// Groups have no name.
func ItemName(item Item) (string, bool) {
	switch item.ItemKind() {
	case ItemAttribute:
		return item.(*Attribute).Name, true
	case ItemElement:
		return item.(*ChildElement).Name, true
	case ItemGroup:
		return "", false
	default:
		return "", false
	}
}

// ItemType returns the type reference of an attribute or element member.
func ItemType(item Item) (string, bool) {
	switch item.ItemKind() {
	case ItemAttribute:
		return item.(*Attribute).Type, true
	case ItemElement:
		return item.(*ChildElement).Type, true
	case ItemGroup:
		return "", false
	default:
		return "", false
	}
}

func sameMember(a, b Item) bool {
	if a.ItemKind() != b.ItemKind() {
		return false
	}
	an, aok := ItemName(a)
	bn, bok := ItemName(b)
	return aok && bok && names.Key(an) == names.Key(bn)
}
