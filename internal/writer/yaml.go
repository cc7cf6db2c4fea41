package writer

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/differ"
)

// YAML writes the exported model as a YAML document.
type YAML struct{}

// DisplayName implements Writer.
func (YAML) DisplayName() string { return "YAML model" }

// FileName implements Writer.
func (YAML) FileName() string { return "model.yaml" }

// Contents implements Writer.
func (YAML) Contents(model *differ.VersionedXSD, versions []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(model.Export(versions)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
