package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const releaseTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="orderIdType">
    <xs:restriction base="xs:string"><xs:maxLength value="25"/></xs:restriction>
  </xs:simpleType>
  <xs:complexType name="ROOT">
    <xs:sequence>
      <xs:element name="orderId" type="orderIdType"/>
    </xs:sequence>
    <xs:attribute name="version" type="xs:string" use="required"/>
  </xs:complexType>
  <xs:element name="ROOT" type="ROOT"/>
</xs:schema>`

func release(root string) []byte {
	return bytes.ReplaceAll([]byte(releaseTemplate), []byte("ROOT"), []byte(root))
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeReleases(t *testing.T, dir string) string {
	t.Helper()
	releases := filepath.Join(dir, "xsd")
	require.NoError(t, os.MkdirAll(releases, 0o755))
	files := map[string][]byte{
		"SchemaCombined_v11.0.xsd": release("litleRequest"),
		"SchemaCombined_v11.1.xsd": release("litleRequest"),
		"SchemaCombined_v12.0.xsd": release("cnpRequest"),
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(releases, name), content, 0o644))
	}
	return releases
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestFoldWritesModel(t *testing.T) {
	dir := isolate(t)
	releases := writeReleases(t, dir)
	out := filepath.Join(dir, "build", "model")

	code, stdout, stderr := runCLI("fold", "--releases", releases, "--out", out, "--validate")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "folded 3 releases 11.0..12.0")

	data, err := os.ReadFile(filepath.Join(out, "model.json"))
	require.NoError(t, err)
	assert.Equal(t, `["11.0","11.1","12.0"]`, gjson.GetBytes(data, "versions").Raw)
	assert.Equal(t, "cnpRequest", gjson.GetBytes(data, "complexTypes.0.name").String())
	assert.Equal(t, "litleRequest", gjson.GetBytes(data, "complexTypes.0.names.0.name").String())
	assert.Equal(t, "orderIdType", gjson.GetBytes(data, "simpleTypes.0.name").String())
}

func TestFoldUsesConfigFile(t *testing.T) {
	dir := isolate(t)
	writeReleases(t, dir)
	cfg := filepath.Join(dir, ".xsdfold.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("releases_dir: xsd\noutput_dir: gen\nformat: yaml\nconstraint: \"< 12.0\"\n"), 0o644))

	code, stdout, stderr := runCLI("fold")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "folded 2 releases 11.0..11.1")

	data, err := os.ReadFile(filepath.Join(dir, "gen", "model.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: litleRequest")
	assert.NotContains(t, string(data), "12.0")
}

func TestFoldRenamesFile(t *testing.T) {
	dir := isolate(t)
	releases := writeReleases(t, dir)
	renames := filepath.Join(dir, "renames.yaml")
	require.NoError(t, os.WriteFile(renames, []byte("{}\n"), 0o644))

	code, _, stderr := runCLI("fold", "--releases", releases, "--out", "out", "--renames", renames)
	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(filepath.Join(dir, "out", "model.json"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(data, "complexTypes.#").Int())
}

func TestHistoryPrintsTable(t *testing.T) {
	dir := isolate(t)
	releases := writeReleases(t, dir)

	code, stdout, stderr := runCLI("history", "--releases", releases, "litleRequest")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "complexType cnpRequest")
	assert.Contains(t, stdout, "litleRequest")
	assert.Contains(t, stdout, "11.1")
	assert.Contains(t, stdout, "orderId")
	assert.Contains(t, stdout, "attribute")

	code, _, stderr = runCLI("history", "--releases", releases, "saleType")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `no type, enumeration or element named "saleType"`)
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	good := filepath.Join(dir, "SchemaCombined_v12.0.xsd")
	require.NoError(t, os.WriteFile(good, release("cnpRequest"), 0o644))

	code, stdout, stderr := runCLI("check", good)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "all type references resolve")

	broken := filepath.Join(dir, "SchemaCombined_v12.1.xsd")
	content := bytes.Replace(release("cnpRequest"), []byte(`base="xs:string"`), []byte(`base="lengthType"`), 1)
	require.NoError(t, os.WriteFile(broken, content, 0o644))

	code, stdout, stderr = runCLI("check", broken)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "[unresolved-type]")
	assert.Contains(t, stdout, "simpleType/orderIdType")
	assert.Contains(t, stdout, "(release 12.1)")
	assert.Contains(t, stderr, "unresolved type references")
	assert.NotContains(t, stderr, "error:")
}

func TestUsageErrors(t *testing.T) {
	isolate(t)

	code, _, _ := runCLI("--help")
	assert.Equal(t, 0, code)

	code, stdout, _ := runCLI("fold", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Output encoding (json, yaml)")

	code, _, stderr := runCLI("explode")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "error:")

	code, _, stderr = runCLI("--log-level", "chatty", "check", "x.xsd")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "log level")

	code, _, stderr = runCLI("fold", "--releases", "missing-dir")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error:")
}
