package differ

import "github.com/zxc8027/cnp-xml-fields-generator/internal/occurs"

// Snapshot is the serializable view of a merged model.
type Snapshot struct {
	Versions     []string `json:"versions" yaml:"versions"`
	Enums        []Entity `json:"enums" yaml:"enums"`
	SimpleTypes  []Entity `json:"simpleTypes" yaml:"simpleTypes"`
	ComplexTypes []Entity `json:"complexTypes" yaml:"complexTypes"`
	Elements     []Entity `json:"elements" yaml:"elements"`
}

// Entity is one exported history.
type Entity struct {
	Default      *string        `json:"default,omitempty" yaml:"default,omitempty"`
	MinOccurs    *int           `json:"minOccurs,omitempty" yaml:"minOccurs,omitempty"`
	MaxOccurs    *occurs.Occurs `json:"maxOccurs,omitempty" yaml:"maxOccurs,omitempty"`
	Required     *bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Name         string         `json:"name" yaml:"name"`
	DeclaredType string         `json:"declaredType,omitempty" yaml:"declaredType,omitempty"`
	Role         Role           `json:"role,omitempty" yaml:"role,omitempty"`
	Names        []NameVersion  `json:"names" yaml:"names"`
	Children     []Entity       `json:"children,omitempty" yaml:"children,omitempty"`
}

// Export returns the model as plain slices in storage order, with versions
// as the release order used to merge it.
func (v *VersionedXSD) Export(versions []string) Snapshot {
	snap := Snapshot{
		Versions:     append([]string{}, versions...),
		Enums:        []Entity{},
		SimpleTypes:  []Entity{},
		ComplexTypes: []Entity{},
		Elements:     []Entity{},
	}
	for enum := range v.Enums.Values() {
		snap.Enums = append(snap.Enums, exportComposite(enum))
	}
	for item := range v.SimpleTypes.Values() {
		snap.SimpleTypes = append(snap.SimpleTypes, exportItem(item, RoleNone))
	}
	for composite := range v.ComplexTypes.Values() {
		snap.ComplexTypes = append(snap.ComplexTypes, exportComposite(composite))
	}
	for item := range v.Elements.Values() {
		snap.Elements = append(snap.Elements, exportItem(item, RoleNone))
	}
	return snap
}

func exportItem(item *VersionedItem, role Role) Entity {
	return Entity{
		Name:         item.Canonical,
		Role:         role,
		DeclaredType: item.DeclaredType,
		Default:      item.DefaultValue,
		MinOccurs:    item.MinOccurs,
		MaxOccurs:    item.MaxOccurs,
		Required:     item.Required,
		Names:        append([]NameVersion{}, item.Names...),
	}
}

func exportComposite(c *VersionedComposite) Entity {
	e := exportItem(&c.VersionedItem, RoleNone)
	for key, child := range c.Children.All() {
		e.Children = append(e.Children, exportItem(child, key.Role))
	}
	return e
}
