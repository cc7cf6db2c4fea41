// Package normalize rewrites a parsed schema into the shape the version
// differ absorbs: group-free complex types and no identity simple types.
package normalize

import (
	"fmt"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/builtins"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
)

// Flatten returns a copy of schema whose complex types carry only the leaves
// of their model groups. Simple types and elements are copied unchanged.
func Flatten(schema *parser.Schema) (*parser.Schema, error) {
	out := parser.NewSchema()
	out.Namespace = schema.Namespace
	for _, t := range schema.Types.All() {
		switch t.TypeKind() {
		case model.KindComplex:
			flat, err := t.(*model.ComplexType).Flatten()
			if err != nil {
				return nil, fmt.Errorf("flatten schema: %w", err)
			}
			out.Types.Set(flat.Name, flat)
		case model.KindSimple:
			out.Types.Set(t.TypeName(), t.(*model.SimpleType).Clone())
		}
	}
	for _, el := range schema.Elements.All() {
		out.Elements.Set(el.Name, el.Clone())
	}
	return out, nil
}

// Compress returns a copy of schema without identity simple types: types with
// no facets and no literals whose base chain reaches a built-in datatype
// through other such types. Every reference to a removed type is rewritten to
// the datatype it stands for. Compress is idempotent.
func Compress(schema *parser.Schema) *parser.Schema {
	aliases := Aliases(schema)
	rewrite := func(ref string) string {
		if target, ok := aliases[names.Key(ref)]; ok {
			return target
		}
		return ref
	}

	out := parser.NewSchema()
	out.Namespace = schema.Namespace
	for key, t := range schema.Types.All() {
		if _, removed := aliases[key]; removed {
			continue
		}
		switch t.TypeKind() {
		case model.KindSimple:
			st := t.(*model.SimpleType).Clone()
			st.Base = rewrite(st.Base)
			out.Types.Set(st.Name, st)
		case model.KindComplex:
			ct := t.(*model.ComplexType).Clone()
			ct.Base = rewrite(ct.Base)
			rewriteItems(ct.Items, rewrite)
			out.Types.Set(ct.Name, ct)
		}
	}
	for _, el := range schema.Elements.All() {
		clone := el.Clone()
		clone.Base = rewrite(clone.Base)
		rewriteItems(clone.Items, rewrite)
		out.Elements.Set(clone.Name, clone)
	}
	return out
}

// Aliases maps the key of every identity simple type in schema to the
// built-in datatype it resolves to.
func Aliases(schema *parser.Schema) map[string]string {
	aliases := make(map[string]string)
	for key, t := range schema.Types.All() {
		st, ok := model.AsSimpleType(t)
		if !ok || !isIdentity(st) {
			continue
		}
		if target, ok := resolveIdentity(schema, st); ok {
			aliases[key] = target
		}
	}
	return aliases
}

func isIdentity(st *model.SimpleType) bool {
	return len(st.Restrictions) == 0 && len(st.Enums) == 0 && st.Base != ""
}

// resolveIdentity follows identity simple types from st to a built-in datatype.
func resolveIdentity(schema *parser.Schema, st *model.SimpleType) (string, bool) {
	visited := map[*model.SimpleType]bool{}
	for current := st; ; {
		if visited[current] {
			return "", false
		}
		visited[current] = true
		if builtins.IsPrimitive(current.Base) {
			return current.Base, true
		}
		next, ok := schema.Type(current.Base)
		if !ok {
			return "", false
		}
		nextSimple, ok := model.AsSimpleType(next)
		if !ok || !isIdentity(nextSimple) {
			return "", false
		}
		current = nextSimple
	}
}

func rewriteItems(items []model.Item, rewrite func(string) string) {
	for _, item := range items {
		switch item.ItemKind() {
		case model.ItemAttribute:
			attr := item.(*model.Attribute)
			attr.Type = rewrite(attr.Type)
		case model.ItemElement:
			el := item.(*model.ChildElement)
			el.Type = rewrite(el.Type)
		case model.ItemGroup:
			rewriteItems(item.(*model.Group).Items, rewrite)
		}
	}
}
