// Package writer persists a merged cross-release model.
package writer

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
)

// Writer renders a merged model into one output file.
type Writer interface {
	// DisplayName names the output kind in logs and CLI output.
	DisplayName() string
	// FileName is the output file name relative to the output directory.
	FileName() string
	// Contents renders model, merged over versions.
	Contents(model *differ.VersionedXSD, versions []string) ([]byte, error)
}

// Write renders model with w and stores it under dir, creating dir when
// absent and replacing an existing file. It returns the written path.
func Write(fs billy.Filesystem, dir string, w Writer, model *differ.VersionedXSD, versions []string) (string, error) {
	contents, err := w.Contents(model, versions)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", w.DisplayName(), err)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := fs.Join(dir, w.FileName())
	if err := util.WriteFile(fs, path, contents, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Format names a supported output encoding.
type Format string

const (
	// FormatJSON encodes the model as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML encodes the model as YAML.
	FormatYAML Format = "yaml"
)

// Formats lists the supported output encodings.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML}
}

// ForFormat returns the writer for name. Matching is case-insensitive and
// "yml" is accepted for YAML.
func ForFormat(name string) (Writer, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", name, Formats())
	}
}
