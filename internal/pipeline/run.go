package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/parser"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/release"
)

// Config configures Run.
type Config struct {
	Logger      *zap.Logger
	Renames     differ.RenameTable
	Parallelism int
	Validate    bool
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) parallelism() int {
	if c.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Parallelism
}

// Result is the merged cross-release model and the release order it spans.
type Result struct {
	Model    *differ.VersionedXSD
	Versions []string
}

// Prepare parses one document and normalizes it for absorption.
func Prepare(doc release.Document, cfg Config) (*Release, error) {
	version := doc.Version.String()
	logger := cfg.logger().With(zap.String("release", version), zap.String("path", doc.Path))

	schema, err := parser.ParseBytes(doc.Content, parser.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.Path, err)
	}
	rel := NewRelease(version, schema)
	if err := rel.Flatten(); err != nil {
		return nil, err
	}
	if err := rel.Compress(); err != nil {
		return nil, err
	}
	if cfg.Validate {
		if err := rel.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Debug("prepared release",
		zap.Stringer("stage", rel.Stage()),
		zap.Int("types", rel.Schema.Types.Len()),
		zap.Int("elements", rel.Schema.Elements.Len()))
	return rel, nil
}

// Run prepares docs concurrently, absorbs them into one model in ascending
// release order and merges the model. docs must already be sorted.
func Run(ctx context.Context, docs []release.Document, cfg Config) (*Result, error) {
	for i := 1; i < len(docs); i++ {
		if docs[i].Version.Compare(docs[i-1].Version) <= 0 {
			return nil, fmt.Errorf("run: releases %s and %s are not in ascending order",
				docs[i-1].Version, docs[i].Version)
		}
	}

	releases := make([]*Release, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism())
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := Prepare(doc, cfg)
			if err != nil {
				return err
			}
			releases[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := cfg.logger()
	model := differ.New(cfg.Renames, differ.WithLogger(logger))
	versions := release.Versions(docs)
	for _, rel := range releases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := model.Absorb(rel.Schema, rel.Version); err != nil {
			return nil, err
		}
	}
	if err := model.Merge(versions); err != nil {
		return nil, err
	}
	logger.Info("folded releases",
		zap.Int("releases", len(versions)),
		zap.Int("complexTypes", model.ComplexTypes.Len()),
		zap.Int("simpleTypes", model.SimpleTypes.Len()),
		zap.Int("enums", model.Enums.Len()),
		zap.Int("elements", model.Elements.Len()))
	return &Result{Model: model, Versions: versions}, nil
}
