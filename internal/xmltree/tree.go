// Package xmltree builds the small element tree the schema parser walks.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"unicode"
)

// Document is a parsed markup document.
type Document struct {
	root *Element
}

// Root returns the document element.
func (d *Document) Root() *Element {
	return d.root
}

// Element is one node of the tree. Namespace holds the resolved namespace URI,
// Local the tag without any prefix.
type Element struct {
	Namespace string
	Local     string
	attrs     []Attr
	children  []*Element
}

// Attr is an attribute as written in the document.
type Attr struct {
	Namespace string
	Local     string
	Value     string
}

// Parse reads r into a Document.
func Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var stack []*Element
	var root *Element
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("unexpected element %s after document end", t.Name.Local)
			}
			elem := &Element{
				Namespace: t.Name.Space,
				Local:     t.Name.Local,
				attrs:     convertAttrs(t.Attr),
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 && root != nil {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 && !isIgnorableOutsideRoot(string(t)) {
				return nil, fmt.Errorf("unexpected character data outside root element")
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	if !rootClosed {
		return nil, io.ErrUnexpectedEOF
	}
	return &Document{root: root}, nil
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func convertAttrs(xmlAttrs []xml.Attr) []Attr {
	attrs := make([]Attr, 0, len(xmlAttrs))
	for _, a := range xmlAttrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, Attr{Namespace: a.Name.Space, Local: a.Name.Local, Value: a.Value})
	}
	return attrs
}

// Attr returns the value of the unqualified attribute name and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Namespace == "" && a.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttribute returns the value of the unqualified attribute name, or "".
func (e *Element) GetAttribute(name string) string {
	v, _ := e.Attr(name)
	return v
}

// Children returns the child elements in document order.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// ChildrenExcept returns the child elements whose local name is not in skip.
func (e *Element) ChildrenExcept(skip ...string) []*Element {
	out := make([]*Element, 0, len(e.children))
outer:
	for _, child := range e.children {
		for _, s := range skip {
			if child.Local == s {
				continue outer
			}
		}
		out = append(out, child)
	}
	return out
}

// Walk visits the descendants of e depth-first in document order. Returning
// false from visit skips the descendants of that node.
func (e *Element) Walk(visit func(*Element) bool) {
	for _, child := range e.children {
		if visit(child) {
			child.Walk(visit)
		}
	}
}
