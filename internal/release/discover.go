package release

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	xsderrors "github.com/zxc8027/cnp-xml-fields-generator/errors"
)

// Extension is the file extension of schema documents.
const Extension = ".xsd"

// Document is the content of one release's schema document.
type Document struct {
	Path    string
	Content []byte
	Version Version
}

// Discover reads every schema document in dir that filter allows and returns
// them in ascending release order. Two documents for the same release are an
// error.
func Discover(fs billy.Filesystem, dir string, filter Filter) ([]Document, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover releases: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), Extension) {
			continue
		}
		v, err := FromFileName(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("discover releases: %w", err)
		}
		if !filter.Allows(v) {
			continue
		}
		docs = append(docs, Document{Version: v, Path: fs.Join(dir, entry.Name())})
	}

	slices.SortStableFunc(docs, func(a, b Document) int {
		return a.Version.Compare(b.Version)
	})
	for i := 1; i < len(docs); i++ {
		if docs[i].Version == docs[i-1].Version {
			return nil, fmt.Errorf("discover releases: %w: %s and %s are both release %s",
				xsderrors.ErrDuplicateRelease, docs[i-1].Path, docs[i].Path, docs[i].Version)
		}
	}

	for i := range docs {
		content, err := util.ReadFile(fs, docs[i].Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", docs[i].Path, err)
		}
		docs[i].Content = content
	}
	return docs, nil
}

// Versions returns the identifiers of docs in order.
func Versions(docs []Document) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Version.String()
	}
	return out
}
