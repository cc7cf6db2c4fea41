package fieldgen

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/pipeline"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/release"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// FoldOptions configures release discovery and folding.
type FoldOptions struct {
	logger      *zap.Logger
	renames     map[string]string
	constraint  string
	parallelism intOption
	renamesSet  bool
	validate    bool
}

type resolvedFoldOptions struct {
	filter   release.Filter
	pipeline pipeline.Config
}

// NewFoldOptions returns a default, valid fold options value: every release,
// the built-in rename table, no validation, one parse worker per CPU.
func NewFoldOptions() FoldOptions {
	return FoldOptions{}
}

// Validate validates fold options values.
func (o FoldOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithLogger sets the logger receiving diagnostics (nil discards them).
func (o FoldOptions) WithLogger(logger *zap.Logger) FoldOptions {
	o.logger = logger
	return o
}

// WithRenames replaces the built-in legacy -> canonical rename table. An
// empty table disables renaming.
func (o FoldOptions) WithRenames(pairs map[string]string) FoldOptions {
	o.renames = maps.Clone(pairs)
	o.renamesSet = true
	return o
}

// WithConstraint restricts folding to releases matching a semantic version
// constraint such as ">= 9.0, < 12.0" (empty selects every release).
func (o FoldOptions) WithConstraint(expr string) FoldOptions {
	o.constraint = expr
	return o
}

// WithParallelism sets the number of documents parsed concurrently (0 uses default).
func (o FoldOptions) WithParallelism(value int) FoldOptions {
	o.parallelism = intOption{value: value, set: true}
	return o
}

// WithValidate controls whether every type reference of every release must
// resolve before folding.
func (o FoldOptions) WithValidate(value bool) FoldOptions {
	o.validate = value
	return o
}

func (o FoldOptions) withDefaults() (resolvedFoldOptions, error) {
	filter, err := release.NewFilter(o.constraint)
	if err != nil {
		return resolvedFoldOptions{}, err
	}
	parallelism := o.parallelism.resolved()
	if parallelism < 0 {
		return resolvedFoldOptions{}, fmt.Errorf("parallelism must be >= 0, got %d", parallelism)
	}
	renames := differ.DefaultRenames()
	if o.renamesSet {
		renames = o.renames
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return resolvedFoldOptions{
		filter: filter,
		pipeline: pipeline.Config{
			Logger:      logger,
			Renames:     differ.NewRenameTable(renames),
			Parallelism: parallelism,
			Validate:    o.validate,
		},
	}, nil
}
