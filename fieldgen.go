// Package fieldgen folds the schema documents of successive product releases
// into one model that records, for every type, element, attribute and
// enumeration literal, the release ranges over which each spelling was in
// effect.
package fieldgen

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/names"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/pipeline"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/release"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/writer"
)

// Document is one release's schema document.
type Document = release.Document

// Snapshot is the serializable view of a folded model.
type Snapshot = differ.Snapshot

// Entity is the exported history of one type, element or member.
type Entity = differ.Entity

// NameVersion is one spelling of an entity over a closed release range.
type NameVersion = differ.NameVersion

// EntityKind names the collection an entity belongs to.
type EntityKind string

const (
	// KindComplexType is a composite type.
	KindComplexType EntityKind = "complexType"
	// KindEnum is an enumerated simple type.
	KindEnum EntityKind = "enum"
	// KindSimpleType is a restricted simple type.
	KindSimpleType EntityKind = "simpleType"
	// KindElement is a top-level element declaration.
	KindElement EntityKind = "element"
)

// Model is a folded cross-release model.
type Model struct {
	xsd      *differ.VersionedXSD
	versions []string
}

// Fold discovers the schema documents in dir, parses them and folds them
// into one model in ascending release order.
func Fold(ctx context.Context, fsys billy.Filesystem, dir string, opts FoldOptions) (*Model, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("fold options: %w", err)
	}
	docs, err := release.Discover(fsys, dir, resolved.filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		resolved.pipeline.Logger.Warn("no schema documents found",
			zap.String("dir", dir), zap.String("constraint", resolved.filter.String()))
	}
	return foldDocuments(ctx, docs, resolved)
}

// FoldDocuments folds documents already in memory. docs must be in ascending
// release order.
func FoldDocuments(ctx context.Context, docs []Document, opts FoldOptions) (*Model, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("fold options: %w", err)
	}
	var selected []Document
	for _, doc := range docs {
		if resolved.filter.Allows(doc.Version) {
			selected = append(selected, doc)
		}
	}
	return foldDocuments(ctx, selected, resolved)
}

func foldDocuments(ctx context.Context, docs []Document, resolved resolvedFoldOptions) (*Model, error) {
	result, err := pipeline.Run(ctx, docs, resolved.pipeline)
	if err != nil {
		return nil, fmt.Errorf("fold: %w", err)
	}
	return &Model{xsd: result.Model, versions: result.Versions}, nil
}

// Versions returns the release identifiers the model spans, oldest first.
func (m *Model) Versions() []string {
	return append([]string(nil), m.versions...)
}

// Snapshot exports the model.
func (m *Model) Snapshot() Snapshot {
	return m.xsd.Export(m.versions)
}

// History returns the entity named name, looked up under its canonical
// spelling in complex types, enumerations, simple types and elements, in
// that order.
func (m *Model) History(name string) (Entity, EntityKind, bool) {
	key := names.Key(m.xsd.Renames().Canonical(name))
	snap := m.Snapshot()
	for _, group := range []struct {
		kind     EntityKind
		entities []Entity
	}{
		{KindComplexType, snap.ComplexTypes},
		{KindEnum, snap.Enums},
		{KindSimpleType, snap.SimpleTypes},
		{KindElement, snap.Elements},
	} {
		for _, entity := range group.entities {
			if names.Key(entity.Name) == key {
				return entity, group.kind, true
			}
		}
	}
	return Entity{}, "", false
}

// Write encodes the model in format ("json" or "yaml") and stores it under
// dir, creating dir when absent. It returns the written path.
func (m *Model) Write(fsys billy.Filesystem, dir, format string) (string, error) {
	w, err := writer.ForFormat(format)
	if err != nil {
		return "", err
	}
	return writer.Write(fsys, dir, w, m.xsd, m.versions)
}

// Check parses one schema document, normalizes it and validates every type
// reference. Offending references are reported together as an
// errors.ValidationList tagged with version.
func Check(r io.Reader, version string, opts FoldOptions) error {
	resolved, err := opts.withDefaults()
	if err != nil {
		return fmt.Errorf("fold options: %w", err)
	}
	schema, err := parser.Parse(r, parser.WithLogger(resolved.pipeline.Logger))
	if err != nil {
		return err
	}
	rel := pipeline.NewRelease(version, schema)
	if err := rel.Flatten(); err != nil {
		return err
	}
	if err := rel.Compress(); err != nil {
		return err
	}
	return rel.Validate()
}

// CheckFile runs Check on the document at path. The release identifier is
// read from the file name when it embeds one.
func CheckFile(fsys billy.Filesystem, path string, opts FoldOptions) error {
	content, err := util.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	version := ""
	if v, err := release.FromFileName(path); err == nil {
		version = v.String()
	}
	if err := Check(bytes.NewReader(content), version, opts); err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	return nil
}
