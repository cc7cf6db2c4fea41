// Package parser turns one schema document into a Schema.
package parser

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/builtins"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/occurs"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/xmltree"
)

// Option configures Parse.
type Option func(*parser)

// WithLogger sets the logger receiving non-fatal diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type parser struct {
	schema *Schema
	logger *zap.Logger
}

// Parse reads one schema document. Malformed markup, a missing identifying
// attribute and an unmergeable duplicate are fatal; unsupported constructs are
// logged and skipped.
func Parse(r io.Reader, opts ...Option) (*Schema, error) {
	p := &parser{schema: NewSchema(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}

	doc, err := xmltree.Parse(r)
	if err != nil {
		return nil, xsderrors.NewXMLParseError(err)
	}
	root := doc.Root()
	if root.Local != "schema" {
		return nil, &xsderrors.ParseError{
			Code:    xsderrors.ErrSchemaRoot,
			Message: fmt.Sprintf("root element is <%s>, want <schema>", root.Local),
		}
	}
	if root.Namespace != builtins.XSDNamespace {
		p.logger.Warn("schema root outside the XML Schema namespace", zap.String("namespace", root.Namespace))
	}
	p.schema.Namespace = root.GetAttribute("targetNamespace")

	for _, child := range root.Children() {
		if err := p.topLevel(child); err != nil {
			return nil, err
		}
	}
	return p.schema, nil
}

// ParseBytes parses an in-memory schema document.
func ParseBytes(data []byte, opts ...Option) (*Schema, error) {
	return Parse(bytes.NewReader(data), opts...)
}

func (p *parser) topLevel(el *xmltree.Element) error {
	switch kind := classify(el.Local); kind {
	case tagSimpleType:
		name, err := requiredName(el)
		if err != nil {
			return err
		}
		return p.simpleType(el, name)
	case tagComplexType:
		name, err := requiredName(el)
		if err != nil {
			return err
		}
		return p.complexType(el, name, "")
	case tagElement:
		return p.topLevelElement(el)
	case tagSequence, tagAll, tagChoice, tagAttribute, tagComplexContent,
		tagSimpleContent, tagExtension, tagRestriction, tagAnnotation, tagUnsupported:
		p.logger.Warn("unsupported top-level tag", zap.String("tag", el.Local))
		return nil
	}
	panic("parser: unknown tag kind for " + el.Local)
}

func (p *parser) topLevelElement(el *xmltree.Element) error {
	name, err := requiredName(el)
	if err != nil {
		return err
	}

	base := ""
	if v, ok := el.Attr("substitutionGroup"); ok {
		base = LocalName(v)
	}
	if v, ok := el.Attr("type"); ok {
		base = LocalName(v)
	}
	if err := p.schema.AddElement(model.NewComplexType(name, base)); err != nil {
		return err
	}

	children := significantChildren(el)
	if len(children) == 0 {
		return nil
	}
	if len(children) == 1 && children[0].Local == "complexType" {
		return p.complexType(children[0], name, base)
	}
	p.logger.Warn("unsupported child of top-level element",
		zap.String("name", name), zap.String("tag", children[0].Local))
	return nil
}

func (p *parser) addType(t model.Type) error {
	merged, err := p.schema.AddType(t)
	if err != nil {
		return err
	}
	if merged {
		p.logger.Debug("merged duplicate simple type", zap.String("name", t.TypeName()))
	}
	return nil
}

// simpleType registers a simple type. A name attribute on el takes precedence
// over the name supplied for an anonymous inline definition.
func (p *parser) simpleType(el *xmltree.Element, name string) error {
	if v, ok := el.Attr("name"); ok && v != "" {
		name = LocalName(v)
	}
	st := model.NewSimpleType(name, "")

	derivation := significantChildren(el)
	if len(derivation) == 0 {
		p.logger.Warn("simple type without derivation", zap.String("name", name))
		return p.addType(st)
	}
	restriction := derivation[0]
	if restriction.Local != "restriction" {
		p.logger.Warn("unsupported simple type derivation",
			zap.String("name", name), zap.String("tag", restriction.Local))
		return p.addType(st)
	}

	base, ok := restriction.Attr("base")
	if !ok {
		return xsderrors.NewMissingAttributeError("restriction", "base")
	}
	st.Base = LocalName(base)

	for _, facet := range restriction.Children() {
		switch facet.Local {
		case "annotation":
			continue
		case "simpleType":
			p.logger.Warn("unsupported nested simple type in restriction", zap.String("name", name))
			continue
		}
		value, ok := facet.Attr("value")
		if !ok {
			return xsderrors.NewMissingAttributeError(facet.Local, "value")
		}
		if facet.Local == "enumeration" {
			st.AddEnumeration(value)
			continue
		}
		st.AddRestriction(facet.Local, value)
	}
	return p.addType(st)
}

// complexType registers a complex type under name. A non-empty base overrides
// the base found in the content derivation.
func (p *parser) complexType(el *xmltree.Element, name, base string) error {
	if base == "" {
		base = derivationBase(el)
	}
	ct := model.NewComplexType(name, base)
	for _, child := range el.Children() {
		items, err := p.content(child)
		if err != nil {
			return err
		}
		for _, item := range items {
			ct.AddItem(item)
		}
	}
	return p.addType(ct)
}

// derivationBase returns the base of the first extension or restriction below
// el, without descending into nested type definitions.
func derivationBase(el *xmltree.Element) string {
	base := ""
	found := false
	el.Walk(func(e *xmltree.Element) bool {
		if found {
			return false
		}
		switch e.Local {
		case "simpleType", "complexType":
			return false
		case "extension", "restriction":
			found = true
			base = LocalName(e.GetAttribute("base"))
			return false
		}
		return true
	})
	return base
}

// content dispatches one node of complex content and returns the items it produces.
func (p *parser) content(el *xmltree.Element) ([]model.Item, error) {
	switch kind := classify(el.Local); kind {
	case tagSequence, tagAll, tagChoice:
		group, err := p.group(el)
		if err != nil {
			return nil, err
		}
		return []model.Item{group}, nil
	case tagAttribute:
		attr, err := p.attribute(el)
		if err != nil {
			return nil, err
		}
		return []model.Item{attr}, nil
	case tagElement:
		child, err := p.element(el)
		if err != nil {
			return nil, err
		}
		return []model.Item{child}, nil
	case tagComplexContent, tagSimpleContent, tagExtension, tagRestriction:
		var items []model.Item
		for _, child := range el.Children() {
			sub, err := p.content(child)
			if err != nil {
				return nil, err
			}
			items = append(items, sub...)
		}
		return items, nil
	case tagAnnotation:
		return nil, nil
	case tagSimpleType, tagComplexType, tagUnsupported:
		p.logger.Warn("unsupported tag in complex content", zap.String("tag", el.Local))
		return nil, nil
	}
	panic("parser: unknown tag kind for " + el.Local)
}

func (p *parser) group(el *xmltree.Element) (*model.Group, error) {
	kind, _ := model.ParseGroupKind(el.Local)
	group := model.NewGroup(kind)
	for _, child := range el.Children() {
		items, err := p.content(child)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			group.AddItem(item)
		}
	}
	return group, nil
}

func (p *parser) attribute(el *xmltree.Element) (*model.Attribute, error) {
	attr := &model.Attribute{}
	if ref, ok := el.Attr("ref"); ok {
		attr.Name = LocalName(ref)
		attr.Type = attr.Name
	} else if name, ok := el.Attr("name"); ok {
		attr.Name = LocalName(name)
	} else {
		return nil, xsderrors.NewMissingAttributeError("attribute", "name")
	}

	if v, ok := el.Attr("type"); ok {
		attr.Type = LocalName(v)
	} else if inline := significantChildren(el); len(inline) == 1 && inline[0].Local == "simpleType" {
		if err := p.simpleType(inline[0], attr.Name); err != nil {
			return nil, err
		}
		attr.Type = attr.Name
	}

	if use, ok := el.Attr("use"); ok {
		switch use {
		case "required":
			attr.Required = true
		case "optional", "prohibited":
		default:
			p.logger.Warn("unknown attribute use", zap.String("name", attr.Name), zap.String("use", use))
		}
	}
	if v, ok := el.Attr("default"); ok {
		attr.Default = v
		attr.HasDefault = true
	}
	return attr, nil
}

func (p *parser) element(el *xmltree.Element) (*model.ChildElement, error) {
	child := model.NewChildElement("", "")
	if ref, ok := el.Attr("ref"); ok {
		child.Name = LocalName(ref)
		child.Type = child.Name
	} else if name, ok := el.Attr("name"); ok {
		child.Name = LocalName(name)
	} else {
		return nil, xsderrors.NewMissingAttributeError("element", "name")
	}

	if v, ok := el.Attr("minOccurs"); ok {
		minOccurs, err := occurs.Parse(v, false)
		if err != nil {
			return nil, xsderrors.NewInvalidAttributeError("element", "minOccurs", v, err)
		}
		child.MinOccurs = minOccurs.Int()
	}
	if v, ok := el.Attr("maxOccurs"); ok {
		maxOccurs, err := occurs.Parse(v, true)
		if err != nil {
			return nil, xsderrors.NewInvalidAttributeError("element", "maxOccurs", v, err)
		}
		child.MaxOccurs = maxOccurs
	}
	if v, ok := el.Attr("default"); ok {
		child.Default = v
		child.HasDefault = true
	}

	if v, ok := el.Attr("type"); ok {
		child.Type = LocalName(v)
	} else if inline := significantChildren(el); len(inline) == 1 {
		switch inline[0].Local {
		case "simpleType":
			if err := p.simpleType(inline[0], child.Name); err != nil {
				return nil, err
			}
			child.Type = child.Name
		case "complexType":
			if err := p.complexType(inline[0], child.Name, ""); err != nil {
				return nil, err
			}
			child.Type = child.Name
		default:
			p.logger.Warn("unable to determine inline type of element",
				zap.String("name", child.Name), zap.String("tag", inline[0].Local))
		}
	}
	if child.Type == "" {
		p.logger.Warn("unable to determine type of element", zap.String("name", child.Name))
	}
	return child, nil
}

func requiredName(el *xmltree.Element) (string, error) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		return "", xsderrors.NewMissingAttributeError(el.Local, "name")
	}
	return LocalName(name), nil
}

// significantChildren returns the children of el that carry schema content.
func significantChildren(el *xmltree.Element) []*xmltree.Element {
	return el.ChildrenExcept("annotation")
}
