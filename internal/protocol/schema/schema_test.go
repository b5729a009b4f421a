package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/danmuck/msgtlv/internal/testutil/testlog"
)

const nodeSchema = `
name = "node"

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

[[field]]
type = 3
name = "token"
kind = "bytes"
min_len = 4

[[field]]
type = 4
name = "flags"
kind = "U8"
`

func mustSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse(nodeSchema)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func TestParseSchema(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)
	if s.Name != "node" || len(s.Fields) != 4 {
		t.Fatalf("unexpected schema: %+v", s)
	}
	f, ok := s.Lookup(4)
	if !ok || f.Kind != KindU8 || f.Name != "flags" {
		t.Fatalf("lookup flags: %+v ok=%v", f, ok)
	}
	if _, ok := s.ByName("port"); !ok {
		t.Fatalf("expected port by name")
	}
}

func TestNewRejectsBadSpecs(t *testing.T) {
	testlog.Start(t)
	cases := map[string][]FieldSpec{
		"duplicate type": {{Type: 1, Name: "a", Kind: KindU8}, {Type: 1, Name: "b", Kind: KindU8}},
		"duplicate name": {{Type: 1, Name: "a", Kind: KindU8}, {Type: 2, Name: "a", Kind: KindU8}},
		"unknown kind":   {{Type: 1, Name: "a", Kind: "float"}},
		"missing name":   {{Type: 1, Kind: KindU8}},
		"min over max":   {{Type: 1, Name: "a", Kind: KindBytes, MinLen: 5, MaxLen: 2}},
	}
	for name, fields := range cases {
		if _, err := New("bad", fields); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadSchemaFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "node.toml")
	if err := os.WriteFile(path, []byte(nodeSchema), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Fields) != 4 {
		t.Fatalf("fields: %d", len(s.Fields))
	}
}

func TestValidateRequiredFields(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)
	buf := message.New()
	_ = tlv.AppendString(buf, 1, "node-a", 16)
	_ = tlv.AppendUint(buf, 2, uint16(9400))
	_ = tlv.Append(buf, 99, []byte{0x01}) // unknown type
	if err := Validate(buf, s); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)
	buf := message.New()
	_ = tlv.AppendString(buf, 1, "node-a", 16)

	err := Validate(buf, s)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Name != "port" || ve.Reason != "missing required field" || !errors.Is(err, tlv.ErrNotFound) {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateUndersizedValueDeterministic(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)
	buf := message.New()
	_ = tlv.AppendString(buf, 1, "node-a", 16)
	_ = tlv.Append(buf, 2, []byte{0x01}) // u16 with one byte

	err := Validate(buf, s)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Name != "port" || !errors.Is(err, tlv.ErrParse) {
		t.Fatalf("expected port parse failure, got %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)

	buf := message.New()
	_ = tlv.AppendString(buf, 1, "a-very-long-node-identifier", 64)
	_ = tlv.AppendUint(buf, 2, uint16(1))
	if err := Validate(buf, s); !errors.Is(err, tlv.ErrParse) {
		t.Fatalf("expected max_len failure, got %v", err)
	}

	buf = message.New()
	_ = tlv.AppendString(buf, 1, "node-a", 16)
	_ = tlv.AppendUint(buf, 2, uint16(1))
	_ = tlv.Append(buf, 3, []byte{1, 2})
	if err := Validate(buf, s); !errors.Is(err, tlv.ErrParse) {
		t.Fatalf("expected min_len failure, got %v", err)
	}
}

func TestValidateMalformedMessage(t *testing.T) {
	testlog.Start(t)
	s := mustSchema(t)
	buf, _ := message.FromBytes([]byte{1, 20, 'x'})
	err := Validate(buf, s)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "malformed message" {
		t.Fatalf("expected malformed message, got %v", err)
	}
}
