// Package differ folds per-release schema models into one model recording,
// for every entity and member, the release ranges over which each spelling
// was in effect.
package differ

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/graphcycle"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
)

// Option configures a VersionedXSD.
type Option func(*VersionedXSD)

// WithLogger sets the logger receiving fold diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(v *VersionedXSD) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// VersionedXSD is the cross-release model. Releases are absorbed one at a
// time in ascending order, then Merge finalizes it.
type VersionedXSD struct {
	Enums        *names.Map[*VersionedComposite]
	SimpleTypes  *names.Map[*VersionedItem]
	ComplexTypes *names.Map[*VersionedComposite]
	Elements     *names.Map[*VersionedItem]
	logger       *zap.Logger
	renames      RenameTable
	absorbed     []string
	merged       bool
}

// New returns an empty model that canonicalizes names through renames.
func New(renames RenameTable, opts ...Option) *VersionedXSD {
	v := &VersionedXSD{
		Enums:        names.NewMap[*VersionedComposite](),
		SimpleTypes:  names.NewMap[*VersionedItem](),
		ComplexTypes: names.NewMap[*VersionedComposite](),
		Elements:     names.NewMap[*VersionedItem](),
		logger:       zap.NewNop(),
		renames:      renames,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Renames returns the rename table in use.
func (v *VersionedXSD) Renames() RenameTable {
	return v.renames
}

func compositeIn(m *names.Map[*VersionedComposite], canonical string) *VersionedComposite {
	if c, ok := m.Get(canonical); ok {
		return c
	}
	c := newComposite(canonical)
	m.Set(canonical, c)
	return c
}

func itemIn(m *names.Map[*VersionedItem], canonical string) *VersionedItem {
	if item, ok := m.Get(canonical); ok {
		return item
	}
	item := &VersionedItem{Canonical: canonical}
	m.Set(canonical, item)
	return item
}

// AddSimpleType records st for version. Enumerations go to Enums with one
// member history per literal; other simple types go to SimpleTypes.
func (v *VersionedXSD) AddSimpleType(st *model.SimpleType, version string) {
	if st.IsEnum() {
		enum := compositeIn(v.Enums, st.Name)
		enum.DeclaredType = v.renames.Canonical(st.Base)
		enum.AddName(st.Name, version, RoleNone)
		for _, literal := range st.Enums {
			enum.child(ChildKey{Name: literal, Role: RoleEnumLiteral}).AddName(literal, version, RoleEnumLiteral)
		}
		return
	}
	item := itemIn(v.SimpleTypes, st.Name)
	item.DeclaredType = v.renames.Canonical(st.Base)
	item.AddName(st.Name, version, RoleNone)
}

// AddComplexType records ct and its members for version under the canonical
// name of ct. Members of model groups are recorded as leaves.
func (v *VersionedXSD) AddComplexType(ct *model.ComplexType, version string) error {
	canonical := v.renames.Canonical(ct.Name)
	if canonical != ct.Name {
		v.logger.Debug("canonicalized legacy name",
			zap.String("name", ct.Name), zap.String("canonical", canonical), zap.String("release", version))
	}
	composite := compositeIn(v.ComplexTypes, canonical)
	composite.DeclaredType = v.renames.Canonical(ct.Base)
	composite.AddName(ct.Name, version, RoleNone)
	return v.addMembers(composite, ct.Items, version)
}

func (v *VersionedXSD) addMembers(composite *VersionedComposite, items []model.Item, version string) error {
	for _, item := range items {
		switch item.ItemKind() {
		case model.ItemAttribute:
			attr := item.(*model.Attribute)
			child := composite.child(ChildKey{Name: v.renames.Canonical(attr.Name), Role: RoleAttribute})
			child.DeclaredType = v.renames.Canonical(attr.Type)
			required, defaultValue := attr.Required, attr.Default
			child.Required = &required
			child.DefaultValue = nil
			if attr.HasDefault {
				child.DefaultValue = &defaultValue
			}
			child.AddName(attr.Name, version, RoleAttribute)
		case model.ItemElement:
			el := item.(*model.ChildElement)
			child := composite.child(ChildKey{Name: v.renames.Canonical(el.Name), Role: RoleElement})
			child.DeclaredType = v.renames.Canonical(el.Type)
			minOccurs, maxOccurs, defaultValue := el.MinOccurs, el.MaxOccurs, el.Default
			child.MinOccurs, child.MaxOccurs = &minOccurs, &maxOccurs
			child.DefaultValue = nil
			if el.HasDefault {
				child.DefaultValue = &defaultValue
			}
			child.AddName(el.Name, version, RoleElement)
		case model.ItemGroup:
			leaves, err := item.(*model.Group).AllChildren()
			if err != nil {
				return fmt.Errorf("complex type %s: %w", composite.Canonical, err)
			}
			if err := v.addMembers(composite, leaves, version); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddElement records a top-level element declaration for version under its canonical name.
func (v *VersionedXSD) AddElement(el *model.ComplexType, version string) {
	item := itemIn(v.Elements, v.renames.Canonical(el.Name))
	item.DeclaredType = v.renames.Canonical(el.Base)
	item.AddName(el.Name, version, RoleNone)
}

// Absorb records every type and element of schema for version. Releases must
// be absorbed once each, in ascending order.
func (v *VersionedXSD) Absorb(schema *parser.Schema, version string) error {
	if v.merged {
		return fmt.Errorf("absorb %s: %w: model already merged", version, xsderrors.ErrStageOrder)
	}
	if slices.Contains(v.absorbed, version) {
		return fmt.Errorf("absorb: %w: %s", xsderrors.ErrDuplicateRelease, version)
	}
	for _, t := range schema.Types.All() {
		switch t.TypeKind() {
		case model.KindSimple:
			v.AddSimpleType(t.(*model.SimpleType), version)
		case model.KindComplex:
			if err := v.AddComplexType(t.(*model.ComplexType), version); err != nil {
				return fmt.Errorf("absorb %s: %w", version, err)
			}
		}
	}
	for _, el := range schema.Elements.All() {
		v.AddElement(el, version)
	}
	v.absorbed = append(v.absorbed, version)
	v.logger.Debug("absorbed release",
		zap.String("release", version),
		zap.Int("types", schema.Types.Len()),
		zap.Int("elements", schema.Elements.Len()))
	return nil
}

// ComplexTypeWithChild walks the base chain of typeName, typeName included,
// and returns the canonical name of the first complex type that owns a member
// under key. A chain that loops fails with ErrTypeCycle even when the owner
// comes before the loop.
func (v *VersionedXSD) ComplexTypeWithChild(typeName string, key ChildKey) (string, bool, error) {
	chain, err := v.BaseChain(typeName)
	if err != nil {
		return "", false, err
	}
	for _, name := range chain {
		composite, _ := v.ComplexTypes.Get(name)
		if composite.Children.Has(key) {
			return composite.Canonical, true, nil
		}
	}
	return "", false, nil
}

// BaseChain returns the canonical names of typeName and each complex base
// type it derives from, nearest first.
func (v *VersionedXSD) BaseChain(typeName string) ([]string, error) {
	start := names.Key(v.renames.Canonical(typeName))
	if !v.ComplexTypes.Has(start) {
		return nil, nil
	}
	keys, err := graphcycle.Chain(start, func(current string) (string, bool, error) {
		composite, _ := v.ComplexTypes.Get(current)
		if composite.DeclaredType == "" || !v.ComplexTypes.Has(composite.DeclaredType) {
			return "", false, nil
		}
		return names.Key(composite.DeclaredType), true, nil
	})
	var cycle graphcycle.CycleError[string]
	if errors.As(err, &cycle) {
		return nil, fmt.Errorf("%w: base chain of %q loops at %q", xsderrors.ErrTypeCycle, typeName, cycle.Key)
	}
	chain := make([]string, 0, len(keys))
	for _, key := range keys {
		composite, _ := v.ComplexTypes.Get(key)
		chain = append(chain, composite.Canonical)
	}
	return chain, nil
}

// Merge finalizes the model against the global release order: member
// histories declared again by a subtype are hoisted to the nearest ancestor
// declaring them, then every history is compressed into maximal ranges.
func (v *VersionedXSD) Merge(versions []string) error {
	order, err := NewOrder(versions)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if err := v.checkAbsorbedOrder(order); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if err := v.hoist(); err != nil {
		return fmt.Errorf("merge: hoist: %w", err)
	}
	if err := v.compress(order); err != nil {
		return fmt.Errorf("merge: compress: %w", err)
	}
	v.merged = true
	if err := v.CheckInvariants(versions); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

func (v *VersionedXSD) checkAbsorbedOrder(order Order) error {
	prev := -1
	for _, version := range v.absorbed {
		pos, err := order.Position(version)
		if err != nil {
			return err
		}
		if pos <= prev {
			return fmt.Errorf("%w: release %s absorbed out of order", xsderrors.ErrStageOrder, version)
		}
		prev = pos
	}
	return nil
}

// checkHierarchy fails when any complex type derives from itself.
func (v *VersionedXSD) checkHierarchy() error {
	err := graphcycle.Detect(graphcycle.Graph[string]{
		Starts: v.ComplexTypes.Keys(),
		Known:  v.ComplexTypes.Has,
		Next: func(key string) ([]string, error) {
			composite, _ := v.ComplexTypes.Get(key)
			if composite.DeclaredType == "" {
				return nil, nil
			}
			return []string{names.Key(composite.DeclaredType)}, nil
		},
	})
	var cycle graphcycle.CycleError[string]
	if errors.As(err, &cycle) {
		return fmt.Errorf("%w: base chain loops at %q", xsderrors.ErrTypeCycle, cycle.Key)
	}
	return err
}

func (v *VersionedXSD) hoist() error {
	if err := v.checkHierarchy(); err != nil {
		return err
	}
	for _, composite := range slices.Collect(v.ComplexTypes.Values()) {
		if composite.DeclaredType == "" {
			continue
		}
		for _, key := range composite.Children.Keys() {
			owner, ok, err := v.ComplexTypeWithChild(composite.DeclaredType, key)
			if err != nil {
				return fmt.Errorf("%s: %w", composite.Canonical, err)
			}
			if !ok || names.Key(owner) == names.Key(composite.Canonical) {
				continue
			}
			ancestor, _ := v.ComplexTypes.Get(owner)
			child, _ := composite.Children.Get(key)
			target := ancestor.child(key)
			for _, nv := range child.Names {
				target.addRange(nv)
			}
			composite.Children.Delete(key)
			v.logger.Debug("hoisted member",
				zap.String("name", key.Name),
				zap.String("from", composite.Canonical),
				zap.String("to", ancestor.Canonical))
		}
	}
	return nil
}

func (v *VersionedXSD) compress(order Order) error {
	for key, item := range v.SimpleTypes.All() {
		if err := item.Merge(order); err != nil {
			return fmt.Errorf("simple type %s: %w", key, err)
		}
	}
	for key, enum := range v.Enums.All() {
		if err := enum.Merge(order); err != nil {
			return fmt.Errorf("enum %s: %w", key, err)
		}
	}
	for key, composite := range v.ComplexTypes.All() {
		if err := composite.Merge(order); err != nil {
			return fmt.Errorf("complex type %s: %w", key, err)
		}
	}
	for key, item := range v.Elements.All() {
		if err := item.Merge(order); err != nil {
			return fmt.Errorf("element %s: %w", key, err)
		}
	}
	return nil
}

// CheckInvariants verifies that every history is sorted, refers only to
// releases in versions, and holds no two ranges Merge would have joined.
func (v *VersionedXSD) CheckInvariants(versions []string) error {
	order, err := NewOrder(versions)
	if err != nil {
		return err
	}
	for key, item := range v.SimpleTypes.All() {
		if err := item.checkInvariants(order); err != nil {
			return fmt.Errorf("simple type %s: %w", key, err)
		}
	}
	for key, enum := range v.Enums.All() {
		if err := enum.checkInvariants(order); err != nil {
			return fmt.Errorf("enum %s: %w", key, err)
		}
	}
	for key, composite := range v.ComplexTypes.All() {
		if err := composite.checkInvariants(order); err != nil {
			return fmt.Errorf("complex type %s: %w", key, err)
		}
	}
	for key, item := range v.Elements.All() {
		if err := item.checkInvariants(order); err != nil {
			return fmt.Errorf("element %s: %w", key, err)
		}
	}
	return nil
}
