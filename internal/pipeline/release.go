// Package pipeline drives per-release schema documents through parsing,
// normalization and the version differ.
package pipeline

import (
	"fmt"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/model"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/normalize"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/typechain"
)

// Stage is the normalization state of one release's schema.
type Stage uint8

const (
	// StageParsed is a schema as read from its document.
	StageParsed Stage = iota + 1
	// StageFlattened is a schema whose complex types carry no model groups.
	StageFlattened
	// StageCompressed is a flattened schema without identity simple types.
	StageCompressed
	// StageValidated is a compressed schema whose references all resolve.
	StageValidated
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageFlattened:
		return "flattened"
	case StageCompressed:
		return "compressed"
	case StageValidated:
		return "validated"
	default:
		return "unknown"
	}
}

// Release is one release's schema and the stage it has reached.
type Release struct {
	Schema  *parser.Schema
	Version string
	stage   Stage
}

// NewRelease wraps a freshly parsed schema.
func NewRelease(version string, schema *parser.Schema) *Release {
	return &Release{Version: version, Schema: schema, stage: StageParsed}
}

// Stage returns the stage the release has reached.
func (r *Release) Stage() Stage {
	return r.stage
}

func (r *Release) advance(from, to Stage) error {
	if r.stage != from {
		return fmt.Errorf("release %s: %w: %s requires a %s schema, have %s",
			r.Version, xsderrors.ErrStageOrder, to, from, r.stage)
	}
	return nil
}

// Flatten replaces the schema with its group-free form.
func (r *Release) Flatten() error {
	if err := r.advance(StageParsed, StageFlattened); err != nil {
		return err
	}
	flat, err := normalize.Flatten(r.Schema)
	if err != nil {
		return fmt.Errorf("release %s: %w", r.Version, err)
	}
	r.Schema = flat
	r.stage = StageFlattened
	return nil
}

// Compress removes identity simple types from a flattened schema.
func (r *Release) Compress() error {
	if err := r.advance(StageFlattened, StageCompressed); err != nil {
		return err
	}
	if name, ok := r.firstGrouped(); ok {
		return fmt.Errorf("release %s: %w: %s still holds model groups", r.Version, xsderrors.ErrStageOrder, name)
	}
	r.Schema = normalize.Compress(r.Schema)
	r.stage = StageCompressed
	return nil
}

func (r *Release) firstGrouped() (string, bool) {
	for _, t := range r.Schema.Types.All() {
		if ct, ok := model.AsComplexType(t); ok && !ct.IsFlat() {
			return ct.Name, true
		}
	}
	for _, el := range r.Schema.Elements.All() {
		if !el.IsFlat() {
			return el.Name, true
		}
	}
	return "", false
}

// Validate checks every type reference of a compressed schema. Offending
// entries are tagged with the release.
func (r *Release) Validate() error {
	if err := r.advance(StageCompressed, StageValidated); err != nil {
		return err
	}
	if err := typechain.Validate(r.Schema); err != nil {
		if list, ok := xsderrors.AsValidations(err); ok {
			tagged := make(xsderrors.ValidationList, len(list))
			for i, v := range list {
				v.Release = r.Version
				tagged[i] = v
			}
			return fmt.Errorf("validate release %s: %w", r.Version, tagged)
		}
		return fmt.Errorf("validate release %s: %w", r.Version, err)
	}
	r.stage = StageValidated
	return nil
}
