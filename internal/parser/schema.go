package parser

import (
	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
)

// Schema is the model of one schema document. Types and elements are
// separate namespaces; both are keyed case-insensitively and iterate in
// first-declared order.
type Schema struct {
	Types     *names.Map[model.Type]
	Elements  *names.Map[*model.ComplexType]
	Namespace string
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{
		Types:    names.NewMap[model.Type](),
		Elements: names.NewMap[*model.ComplexType](),
	}
}

// Type returns the named type definition.
func (s *Schema) Type(name string) (model.Type, bool) {
	return s.Types.Get(name)
}

// Element returns the named top-level element declaration.
func (s *Schema) Element(name string) (*model.ComplexType, bool) {
	return s.Elements.Get(name)
}

// AddType registers t. A simple type whose name is already taken by another
// simple type is merged into it and merged reports true; any other name clash
// is a DuplicateDefinitionError.
func (s *Schema) AddType(t model.Type) (merged bool, err error) {
	existing, ok := s.Types.Get(t.TypeName())
	if !ok {
		s.Types.Set(t.TypeName(), t)
		return false, nil
	}
	current, currentSimple := model.AsSimpleType(existing)
	incoming, incomingSimple := model.AsSimpleType(t)
	if currentSimple && incomingSimple {
		current.MergeFrom(incoming)
		return true, nil
	}
	return false, &xsderrors.DuplicateDefinitionError{
		Kind:     "type",
		Name:     t.TypeName(),
		Existing: existing.TypeKind().String(),
		Incoming: t.TypeKind().String(),
	}
}

// AddElement registers a top-level element declaration. Element names are
// unique within one document.
func (s *Schema) AddElement(el *model.ComplexType) error {
	if s.Elements.Has(el.Name) {
		return &xsderrors.DuplicateDefinitionError{Kind: "element", Name: el.Name}
	}
	s.Elements.Set(el.Name, el)
	return nil
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	out := NewSchema()
	out.Namespace = s.Namespace
	for _, t := range s.Types.All() {
		out.Types.Set(t.TypeName(), model.CloneType(t))
	}
	for _, el := range s.Elements.All() {
		out.Elements.Set(el.Name, el.Clone())
	}
	return out
}
