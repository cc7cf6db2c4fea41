package writer

import (
	json "github.com/goccy/go-json"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
)

// JSON writes the exported model as indented JSON.
type JSON struct{}

// DisplayName implements Writer.
func (JSON) DisplayName() string { return "JSON model" }

// FileName implements Writer.
func (JSON) FileName() string { return "model.json" }

// Contents implements Writer.
func (JSON) Contents(model *differ.VersionedXSD, versions []string) ([]byte, error) {
	out, err := json.MarshalIndent(model.Export(versions), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
