package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `name = "node"

[[field]]
type = 1
name = "id"
kind = "string"
max_len = 16
required = true

[[field]]
type = 2
name = "port"
kind = "u16"
required = true
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncodeHex(t *testing.T) {
	out, err := run(t, "", "--schema", writeSchema(t), "--hex", "encode", "id=n1", "port=9400")
	require.NoError(t, err)
	assert.Equal(t, "01026e31020224b8\n", out)
}

func TestEncodeRejectsBadArgument(t *testing.T) {
	_, err := run(t, "", "--schema", writeSchema(t), "encode", "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want name=value")
}

func TestEncodeMissingRequired(t *testing.T) {
	_, err := run(t, "", "--schema", writeSchema(t), "encode", "id=n1")
	require.Error(t, err)
	var verr schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "port", verr.Name)
}

func TestEncodeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.bin")
	_, err := run(t, "", "--schema", writeSchema(t), "encode", "-o", path, "id=n1", "port=1")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 'n', '1', 2, 2, 0, 1}, data)
}

func TestValidateFromStdin(t *testing.T) {
	out, err := run(t, "01 02 6e 31\n02 02 24 b8\n", "--schema", writeSchema(t), "--hex", "validate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (8 bytes, schema node)")
}

func TestValidateMissingField(t *testing.T) {
	_, err := run(t, "01026e31", "--schema", writeSchema(t), "--hex", "validate", "-")
	require.Error(t, err)
	var verr schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, uint8(2), verr.Type)
}

func TestDumpJSON(t *testing.T) {
	out, err := run(t, "01026e31020224b8090101", "--schema", writeSchema(t), "--hex", "dump", "--json", "-")
	require.NoError(t, err)

	var desc schema.Description
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	require.Len(t, desc.Fields, 3)
	assert.Equal(t, "id", desc.Fields[0].Name)
	assert.Equal(t, "n1", desc.Fields[0].Value)
	assert.Equal(t, "9400", desc.Fields[1].Value)
	assert.Equal(t, "01", desc.Fields[2].Value)
	assert.Equal(t, 0, desc.Trailing)
}

func TestDumpTable(t *testing.T) {
	out, err := run(t, "01026e31020224b8", "--schema", writeSchema(t), "--hex", "dump", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "OFFSET")
	assert.Contains(t, out, "port")
	assert.Contains(t, out, "9400")
}

func TestFind(t *testing.T) {
	out, err := run(t, "0501aa0703010203", "--hex", "find", "--json", "-", "7")
	require.NoError(t, err)

	var rec foundRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, foundRecord{Type: 7, Offset: 3, Size: 5, Value: "010203"}, rec)
}

func TestFindOffsetSkipsEarlierRecords(t *testing.T) {
	out, err := run(t, "0701aa0701bb", "--hex", "find", "--json", "--offset", "3", "-", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `"value": "bb"`)
}

func TestFindErrors(t *testing.T) {
	_, err := run(t, "0501aa", "--hex", "find", "-", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, "0501aa", "--hex", "find", "-", "300")
	require.Error(t, err)
}

func TestInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	out, err := run(t, "", "init", "--kind", "schema", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote schema template")

	s, err := schema.Load(path)
	require.NoError(t, err)
	_, ok := s.ByName("version")
	assert.True(t, ok)

	_, err = run(t, "", "init", "--kind", "schema", "-o", path)
	require.Error(t, err)
	_, err = run(t, "", "init", "--kind", "schema", "-o", path, "--force")
	require.NoError(t, err)
}

func TestFramedStream(t *testing.T) {
	schemaPath := writeSchema(t)
	path := filepath.Join(t.TempDir(), "stream.bin")
	_, err := run(t, "", "--schema", schemaPath, "encode", "--framed", "-o", path, "id=a", "port=1")
	require.NoError(t, err)
	_, err = run(t, "", "--schema", schemaPath, "encode", "--framed", "-o", path, "id=b", "port=2")
	require.NoError(t, err)

	out, err := run(t, "", "--schema", schemaPath, "dump", "--framed", "--json", path)
	require.NoError(t, err)

	var descs []schema.Description
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, 2)
	assert.Equal(t, "a", descs[0].Fields[0].Value)
	assert.Equal(t, "2", descs[1].Fields[1].Value)
}
