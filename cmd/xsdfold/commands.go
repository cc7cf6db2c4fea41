package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	fieldgen "github.com/zxc8027/cnp-xml-fields-generator"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/config"
	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
)

// CLI is the root command structure.
type CLI struct {
	Config     string `help:"Config file (default: search ./.xsdfold.yaml, ~/.xsdfold.yaml, ~/.config/xsdfold/config.yaml)" type:"path"`
	LogLevel   string `name:"log-level" help:"Minimum log level (debug, info, warn, error)"`
	LogFormat  string `name:"log-format" help:"Log encoding (console, json)"`
	CPUProfile string `name:"cpuprofile" help:"Write CPU profile to file" type:"path"`
	MemProfile string `name:"memprofile" help:"Write memory profile to file" type:"path"`

	Fold    FoldCmd    `cmd:"" help:"Fold every release schema into one versioned model file"`
	History HistoryCmd `cmd:"" help:"Print the name history of a type, enumeration or element"`
	Check   CheckCmd   `cmd:"" help:"Validate the type references of one schema document"`
}

// Globals holds shared state for all commands.
type Globals struct {
	Context context.Context
	Config  *config.Config
	Logger  *zap.Logger
	Stdout  io.Writer
	Stderr  io.Writer
}

// reportedError is a failure whose details were already written to the user.
type reportedError struct {
	msg string
}

func (e *reportedError) Error() string { return e.msg }

// SourceFlags select and interpret the release documents.
type SourceFlags struct {
	Releases    string `help:"Directory of release schema documents" type:"path"`
	Constraint  string `help:"Only fold releases matching a version constraint, e.g. '>= 9.0, < 12.0'"`
	Renames     string `help:"YAML file mapping legacy type names to canonical names" type:"path"`
	Validate    bool   `help:"Fail when a type reference of any release does not resolve"`
	Parallelism int    `help:"Documents parsed concurrently (0 uses one per CPU)"`
}

func (s SourceFlags) options(globals *Globals) (fieldgen.FoldOptions, error) {
	cfg := globals.Config
	opts := fieldgen.NewFoldOptions().
		WithLogger(globals.Logger).
		WithConstraint(firstNonEmpty(s.Constraint, cfg.Constraint)).
		WithValidate(s.Validate || cfg.Validate)

	parallelism := cfg.Parallelism
	if s.Parallelism != 0 {
		parallelism = s.Parallelism
	}
	opts = opts.WithParallelism(parallelism)

	switch {
	case s.Renames != "":
		pairs, err := config.LoadRenameTable(s.Renames)
		if err != nil {
			return opts, err
		}
		opts = opts.WithRenames(pairs)
	case len(cfg.Renames) != 0:
		opts = opts.WithRenames(cfg.Renames)
	}
	return opts, opts.Validate()
}

func (s SourceFlags) fold(globals *Globals) (*fieldgen.Model, string, error) {
	opts, err := s.options(globals)
	if err != nil {
		return nil, "", err
	}
	dir, err := filepath.Abs(firstNonEmpty(s.Releases, globals.Config.ReleasesDir))
	if err != nil {
		return nil, "", err
	}
	model, err := fieldgen.Fold(globals.Context, osfs.New(dir), ".", opts)
	if err != nil {
		return nil, dir, err
	}
	return model, dir, nil
}

// FoldCmd folds a release directory and writes the model.
type FoldCmd struct {
	SourceFlags
	Out    string `help:"Output directory" type:"path"`
	Format string `help:"Output encoding (${formats})"`
}

// Run executes the fold command.
func (c *FoldCmd) Run(globals *Globals) error {
	model, dir, err := c.fold(globals)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(firstNonEmpty(c.Out, globals.Config.OutputDir))
	if err != nil {
		return err
	}
	written, err := model.Write(osfs.New(filepath.Dir(out)), filepath.Base(out), firstNonEmpty(c.Format, globals.Config.Format))
	if err != nil {
		return err
	}
	versions := model.Versions()
	span := "no releases"
	if len(versions) > 0 {
		span = fmt.Sprintf("%d releases %s..%s", len(versions), versions[0], versions[len(versions)-1])
	}
	return writef(globals.Stdout, "folded %s from %s into %s\n", span, dir, filepath.Join(filepath.Dir(out), written))
}

// HistoryCmd prints the spelling history of one entity and its members.
type HistoryCmd struct {
	SourceFlags
	Name string `arg:"" help:"Type, enumeration or element name (legacy spellings are accepted)"`
}

// Run executes the history command.
func (c *HistoryCmd) Run(globals *Globals) error {
	model, _, err := c.fold(globals)
	if err != nil {
		return err
	}
	entity, kind, ok := model.History(c.Name)
	if !ok {
		return fmt.Errorf("no type, enumeration or element named %q", c.Name)
	}
	if err := writef(globals.Stdout, "%s %s", kind, entity.Name); err != nil {
		return err
	}
	if entity.DeclaredType != "" {
		if err := writef(globals.Stdout, " (%s)", entity.DeclaredType); err != nil {
			return err
		}
	}
	if err := writeln(globals.Stdout); err != nil {
		return err
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("Member", "Role", "Spelling", "From", "To")
	rows := historyRows("", "", entity.Names)
	for _, child := range entity.Children {
		role, _ := child.Role.MarshalText()
		rows = append(rows, historyRows(child.Name, string(role), child.Names)...)
	}
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}

func historyRows(member, role string, names []fieldgen.NameVersion) [][]any {
	rows := make([][]any, 0, len(names))
	for _, nv := range names {
		rows = append(rows, []any{member, role, nv.Name, nv.Start, nv.End})
	}
	return rows
}

// CheckCmd validates one schema document.
type CheckCmd struct {
	File string `arg:"" help:"Schema document" type:"path"`
}

// Run executes the check command.
func (c *CheckCmd) Run(globals *Globals) error {
	abs, err := filepath.Abs(c.File)
	if err != nil {
		return err
	}
	opts := fieldgen.NewFoldOptions().WithLogger(globals.Logger)
	err = fieldgen.CheckFile(osfs.New(filepath.Dir(abs)), filepath.Base(abs), opts)
	if err == nil {
		return writef(globals.Stdout, "%s: all type references resolve\n", c.File)
	}
	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		return err
	}
	for _, v := range violations {
		if writeErr := writeln(globals.Stdout, v.Error()); writeErr != nil {
			return writeErr
		}
	}
	msg := fmt.Sprintf("%s: %d unresolved type references", c.File, len(violations))
	if writeErr := writeln(globals.Stderr, msg); writeErr != nil {
		return writeErr
	}
	return &reportedError{msg: msg}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
