// Package typechain resolves base-type chains of a parsed schema.
package typechain

import (
	"errors"
	"fmt"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/builtins"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/graphcycle"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
)

// UnresolvedError reports a name in a base chain that is neither a built-in
// datatype nor declared in the schema.
type UnresolvedError struct {
	Name string
	From string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s: %q is not declared", xsderrors.ErrUnresolvedType, e.Name)
	}
	return fmt.Sprintf("%s: %q (base of %q) is not declared", xsderrors.ErrUnresolvedType, e.Name, e.From)
}

// Is matches ErrUnresolvedType.
func (e *UnresolvedError) Is(target error) bool {
	code, ok := target.(xsderrors.ErrorCode)
	return ok && code == xsderrors.ErrUnresolvedType
}

// CycleError reports a base chain that loops back on itself at Name.
type CycleError struct {
	Name string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: base chain of %q loops", xsderrors.ErrTypeCycle, e.Name)
}

// Is matches ErrTypeCycle.
func (e *CycleError) Is(target error) bool {
	code, ok := target.(xsderrors.ErrorCode)
	return ok && code == xsderrors.ErrTypeCycle
}

// Base returns the base of the type or, failing that, the element named name.
// Types are consulted first.
func Base(schema *parser.Schema, name string) (string, bool) {
	if t, ok := schema.Type(name); ok {
		return t.BaseName(), true
	}
	if el, ok := schema.Element(name); ok {
		return el.Base, true
	}
	return "", false
}

// Check walks the base chain starting at name. It returns nil when the chain
// ends at an empty base or a built-in datatype, an *UnresolvedError when a
// link is not declared, and a *CycleError when a link repeats.
func Check(schema *parser.Schema, name string) error {
	spelled := map[string]string{names.Key(name): name}
	from := ""
	_, err := graphcycle.Chain(names.Key(name), func(key string) (string, bool, error) {
		if key == "" || builtins.IsPrimitive(key) {
			return "", false, nil
		}
		base, ok := Base(schema, key)
		if !ok {
			return "", false, &UnresolvedError{Name: spelled[key], From: from}
		}
		from = spelled[key]
		spelled[names.Key(base)] = base
		return names.Key(base), true, nil
	})
	var cycle graphcycle.CycleError[string]
	if errors.As(err, &cycle) {
		return &CycleError{Name: spelled[cycle.Key]}
	}
	return err
}

// IsTypeValid reports whether the base chain starting at name terminates at a
// built-in datatype or an empty base. Cyclic chains are not valid.
func IsTypeValid(schema *parser.Schema, name string) bool {
	return Check(schema, name) == nil
}

// ComplexTypeChain returns the complex type named name followed by each
// complex base type, nearest first. The walk stops at the first base that is
// not a declared complex type.
func ComplexTypeChain(schema *parser.Schema, name string) ([]*model.ComplexType, error) {
	lookup := func(key string) (*model.ComplexType, bool) {
		t, ok := schema.Type(key)
		if !ok {
			return nil, false
		}
		return model.AsComplexType(t)
	}
	if _, ok := lookup(name); !ok {
		return nil, nil
	}
	keys, err := graphcycle.Chain(names.Key(name), func(key string) (string, bool, error) {
		ct, _ := lookup(key)
		if _, ok := lookup(ct.Base); !ok {
			return "", false, nil
		}
		return names.Key(ct.Base), true, nil
	})
	var cycle graphcycle.CycleError[string]
	if errors.As(err, &cycle) {
		return nil, &CycleError{Name: cycle.Key}
	}
	chain := make([]*model.ComplexType, 0, len(keys))
	for _, key := range keys {
		ct, _ := lookup(key)
		chain = append(chain, ct)
	}
	return chain, nil
}

// Validate checks every type base, element base and member type reference
// in schema and returns all offenders as one errors.ValidationList.
func Validate(schema *parser.Schema) error {
	var report xsderrors.ValidationList
	record := func(path, ref string) {
		if err := Check(schema, ref); err != nil {
			report = append(report, toValidation(path, ref, err))
		}
	}

	for _, t := range schema.Types.All() {
		path := t.TypeKind().String() + "/" + t.TypeName()
		record(path, t.BaseName())
		ct, ok := model.AsComplexType(t)
		if !ok {
			continue
		}
		for _, item := range ct.Items {
			switch item.ItemKind() {
			case model.ItemAttribute, model.ItemElement:
				memberName, _ := model.ItemName(item)
				memberType, _ := model.ItemType(item)
				record(path+"/"+item.ItemKind().String()+"/"+memberName, memberType)
			case model.ItemGroup:
				children, err := item.(*model.Group).AllChildren()
				if err != nil {
					report = append(report, xsderrors.NewValidation(xsderrors.ErrGroupCycle, err.Error(), path))
					continue
				}
				for _, child := range children {
					memberName, _ := model.ItemName(child)
					memberType, _ := model.ItemType(child)
					record(path+"/"+child.ItemKind().String()+"/"+memberName, memberType)
				}
			}
		}
	}
	for _, el := range schema.Elements.All() {
		record("element/"+el.Name, el.Base)
	}

	if len(report) == 0 {
		return nil
	}
	return report
}

func toValidation(path, ref string, err error) xsderrors.Validation {
	var cycle *CycleError
	if errors.As(err, &cycle) {
		return xsderrors.Validation{
			Code:    string(xsderrors.ErrTypeCycle),
			Message: fmt.Sprintf("base chain of %q loops", ref),
			Path:    path,
			Actual:  cycle.Name,
		}
	}
	var unresolved *UnresolvedError
	if errors.As(err, &unresolved) {
		return xsderrors.Validation{
			Code:    string(xsderrors.ErrUnresolvedType),
			Message: fmt.Sprintf("reference %q does not resolve to a built-in datatype", ref),
			Path:    path,
			Actual:  unresolved.Name,
		}
	}
	return xsderrors.NewValidation(xsderrors.ErrUnresolvedType, err.Error(), path)
}
