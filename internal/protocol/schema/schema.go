package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Kind is how a record value is interpreted.
type Kind string

const (
	KindU8     Kind = "u8"
	KindU16    Kind = "u16"
	KindU32    Kind = "u32"
	KindString Kind = "string"
	KindBytes  Kind = "bytes"
)

func (k Kind) valid() bool {
	switch k {
	case KindU8, KindU16, KindU32, KindString, KindBytes:
		return true
	}
	return false
}

// FieldSpec describes one type code.
type FieldSpec struct {
	Type     uint8  `toml:"type" json:"type"`
	Name     string `toml:"name" json:"name"`
	Kind     Kind   `toml:"kind" json:"kind"`
	MinLen   int    `toml:"min_len" json:"min_len,omitempty"`
	MaxLen   int    `toml:"max_len" json:"max_len,omitempty"`
	Required bool   `toml:"required" json:"required,omitempty"`
}

// Schema is an operator-supplied set of type codes. Build with New, Load or
// Parse so the lookup tables exist.
type Schema struct {
	Name   string
	Fields []FieldSpec

	byType map[uint8]int
	byName map[string]int
}

type file struct {
	Name   string      `toml:"name"`
	Fields []FieldSpec `toml:"field"`
}

type ValidationError struct {
	Type   uint8
	Name   string
	Reason string
	Err    error
}

func (e ValidationError) Error() string {
	msg := fmt.Sprintf("schema: field=%s type=%d: %s", e.Name, e.Type, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// New checks fields and builds a schema over them.
func New(name string, fields []FieldSpec) (*Schema, error) {
	s := &Schema{
		Name:   name,
		Fields: make([]FieldSpec, 0, len(fields)),
		byType: make(map[uint8]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		f.Kind = Kind(strings.ToLower(strings.TrimSpace(string(f.Kind))))
		if err := checkSpec(f); err != nil {
			return nil, fmt.Errorf("schema %q field[%d]: %w", name, i, err)
		}
		if _, dup := s.byType[f.Type]; dup {
			return nil, fmt.Errorf("schema %q field[%d]: duplicate type %d", name, i, f.Type)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("schema %q field[%d]: duplicate name %q", name, i, f.Name)
		}
		s.byType[f.Type] = len(s.Fields)
		s.byName[f.Name] = len(s.Fields)
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func checkSpec(f FieldSpec) error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if !f.Kind.valid() {
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	if f.MinLen < 0 || f.MaxLen < 0 {
		return errors.New("lengths must not be negative")
	}
	if f.MaxLen > tlv.MaxExtendedValue {
		return fmt.Errorf("max_len %d exceeds %d", f.MaxLen, tlv.MaxExtendedValue)
	}
	if f.MaxLen > 0 && f.MinLen > f.MaxLen {
		return fmt.Errorf("min_len %d exceeds max_len %d", f.MinLen, f.MaxLen)
	}
	return nil
}

// Load reads a schema from a TOML file of [[field]] tables.
func Load(path string) (*Schema, error) {
	var raw file
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("schema load failed (%s): %w", path, err)
	}
	if raw.Name == "" {
		raw.Name = path
	}
	return New(raw.Name, raw.Fields)
}

// Parse reads a schema from TOML text.
func Parse(data string) (*Schema, error) {
	var raw file
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("schema parse failed: %w", err)
	}
	return New(raw.Name, raw.Fields)
}

func (s *Schema) Lookup(typ uint8) (FieldSpec, bool) {
	i, ok := s.byType[typ]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

func (s *Schema) ByName(name string) (FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// Validate checks every field in s against buf: required fields must be
// present and every present field must decode as its kind within its bounds.
// Only the first record of each type is checked. Unknown types are ignored.
func Validate(buf tlv.Buffer, s *Schema) error {
	log.Debug().Str("schema", s.Name).Int("bytes", buf.Len()).Msg("schema.Validate")
	for _, f := range s.Fields {
		rec, err := tlv.Find(buf, f.Type)
		if errors.Is(err, tlv.ErrNotFound) {
			if f.Required {
				log.Warn().Str("schema", s.Name).Str("field", f.Name).Msg("schema.Validate missing field")
				return ValidationError{Type: f.Type, Name: f.Name, Reason: "missing required field", Err: err}
			}
			continue
		}
		if err != nil {
			return ValidationError{Type: f.Type, Name: f.Name, Reason: "malformed message", Err: err}
		}
		if _, err := decode(buf, rec, f); err != nil {
			log.Warn().Err(err).Str("schema", s.Name).Str("field", f.Name).Msg("schema.Validate bad value")
			return ValidationError{Type: f.Type, Name: f.Name, Reason: "invalid value", Err: err}
		}
	}
	log.Debug().Str("schema", s.Name).Msg("schema.Validate ok")
	return nil
}
