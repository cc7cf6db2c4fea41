// Package release identifies per-release schema documents and orders them.
package release

import (
	"cmp"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
)

// Version is a (major, minor) release identifier.
type Version struct {
	Major int
	Minor int
}

// String renders the identifier as "major.minor".
func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// Compare orders versions numerically, so 9.10 sorts after 9.2.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, other.Minor)
}

func (v Version) semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), 0, "", "")
}

// ParseVersion reads an identifier such as "9.10" or "v12.0".
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", xsderrors.ErrInvalidRelease, s, err)
	}
	if sv.Patch() != 0 || sv.Prerelease() != "" {
		return Version{}, fmt.Errorf("%w: %q: only major.minor identifiers are supported", xsderrors.ErrInvalidRelease, s)
	}
	return Version{Major: int(sv.Major()), Minor: int(sv.Minor())}, nil
}

var integerRun = regexp.MustCompile(`\d+`)

// FromFileName reads the release identifier embedded in a document file name:
// the last two integer runs of the base name without its .xsd extension, so
// "SchemaCombined_v12.10.xsd" is release 12.10.
func FromFileName(name string) (Version, error) {
	base := path.Base(name)
	if ext := path.Ext(base); strings.EqualFold(ext, Extension) {
		base = strings.TrimSuffix(base, ext)
	}
	runs := integerRun.FindAllString(base, -1)
	if len(runs) < 2 {
		return Version{}, fmt.Errorf("%w: file name %q does not embed a major and minor number", xsderrors.ErrInvalidRelease, name)
	}
	major, err := strconv.Atoi(runs[len(runs)-2])
	if err != nil {
		return Version{}, fmt.Errorf("%w: file name %q: %v", xsderrors.ErrInvalidRelease, name, err)
	}
	minor, err := strconv.Atoi(runs[len(runs)-1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: file name %q: %v", xsderrors.ErrInvalidRelease, name, err)
	}
	return Version{Major: major, Minor: minor}, nil
}

// Filter selects releases by a semantic version constraint. The zero value
// selects every release.
type Filter struct {
	constraint *semver.Constraints
	expr       string
}

// NewFilter parses a constraint expression such as ">= 9.0, < 12.0".
// An empty expression selects every release.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid release constraint %q: %w", expr, err)
	}
	return Filter{constraint: c, expr: expr}, nil
}

// Allows reports whether v satisfies the constraint.
func (f Filter) Allows(v Version) bool {
	if f.constraint == nil {
		return true
	}
	return f.constraint.Check(v.semver())
}

// String returns the constraint expression.
func (f Filter) String() string {
	return f.expr
}
