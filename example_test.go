package fieldgen_test

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	fieldgen "github.com/zxc8027/cnp-xml-fields-generator"
)

func ExampleFold() {
	release := func(root string) string {
		return `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="` + root + `">
    <xs:attribute name="version" type="xs:string" use="required"/>
  </xs:complexType>
</xs:schema>`
	}

	fs := memfs.New()
	_ = util.WriteFile(fs, "xsd/SchemaCombined_v11.0.xsd", []byte(release("litleRequest")), 0o644)
	_ = util.WriteFile(fs, "xsd/SchemaCombined_v11.1.xsd", []byte(release("litleRequest")), 0o644)
	_ = util.WriteFile(fs, "xsd/SchemaCombined_v12.0.xsd", []byte(release("cnpRequest")), 0o644)

	model, err := fieldgen.Fold(context.Background(), fs, "xsd", fieldgen.NewFoldOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	history, _, _ := model.History("cnpRequest")
	for _, nv := range history.Names {
		fmt.Printf("%s %s-%s\n", nv.Name, nv.Start, nv.End)
	}
	// Output:
	// litleRequest 11.0-11.1
	// cnpRequest 12.0-12.0
}
