package schema

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/danmuck/msgtlv/internal/protocol/tlv"
)

// Field is one record as rendered by Describe.
type Field struct {
	Type     uint8  `json:"type"`
	Name     string `json:"name,omitempty"`
	Kind     Kind   `json:"kind"`
	Offset   int    `json:"offset"`
	Size     int    `json:"size"`
	Extended bool   `json:"extended,omitempty"`
	Value    string `json:"value"`
	Error    string `json:"error,omitempty"`
}

// Description lists the records of a message in wire order.
type Description struct {
	Fields []Field `json:"fields"`
	// Extent is where the last well-formed record ends.
	Extent int `json:"extent"`
	// Trailing counts bytes after Extent too short to form a header.
	Trailing int `json:"trailing"`
}

// Describe walks every record from the read offset. Known types are decoded
// by kind; a value that does not decode keeps its hex form and an error.
// Unknown types render as hex bytes. A length that overruns the buffer fails
// the whole description.
func Describe(buf tlv.Buffer, s *Schema) (Description, error) {
	desc := Description{Fields: []Field{}, Extent: buf.ReadOffset()}
	for rec, err := range tlv.Records(buf) {
		if err != nil {
			return Description{}, err
		}
		f := Field{
			Type:     rec.Type(),
			Kind:     KindBytes,
			Offset:   rec.Offset,
			Size:     rec.Size(),
			Extended: rec.Header.IsExtended(),
		}
		spec, known := s.Lookup(rec.Type())
		if known {
			f.Name = spec.Name
			f.Kind = spec.Kind
			v, err := decode(buf, rec, spec)
			if err == nil {
				f.Value = v
			} else {
				f.Error = err.Error()
			}
		}
		if !known || f.Error != "" {
			raw, err := rawValue(buf, rec)
			if err != nil {
				return Description{}, err
			}
			f.Value = hex.EncodeToString(raw)
		}
		desc.Fields = append(desc.Fields, f)
		desc.Extent = rec.End()
	}
	desc.Trailing = buf.Len() - desc.Extent
	return desc, nil
}

func rawValue(buf tlv.Buffer, rec tlv.Record) ([]byte, error) {
	raw := make([]byte, rec.ValueLength())
	if err := tlv.ReadValue(buf, rec.Offset, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decode renders the value of rec as spec's kind, enforcing its bounds.
func decode(buf tlv.Buffer, rec tlv.Record, spec FieldSpec) (string, error) {
	switch spec.Kind {
	case KindU8:
		v, err := tlv.ReadUint[uint8](buf, rec.Offset)
		return strconv.FormatUint(uint64(v), 10), err
	case KindU16:
		v, err := tlv.ReadUint[uint16](buf, rec.Offset)
		return strconv.FormatUint(uint64(v), 10), err
	case KindU32:
		v, err := tlv.ReadUint[uint32](buf, rec.Offset)
		return strconv.FormatUint(uint64(v), 10), err
	}

	if err := checkLength(spec, rec.ValueLength()); err != nil {
		return "", err
	}
	if spec.Kind == KindString {
		return tlv.ReadString(buf, rec.Offset, rec.ValueLength())
	}
	raw, err := rawValue(buf, rec)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func checkLength(spec FieldSpec, n int) error {
	if n < spec.MinLen {
		return fmt.Errorf("%w: %d bytes, min_len %d", tlv.ErrParse, n, spec.MinLen)
	}
	if spec.MaxLen > 0 && n > spec.MaxLen {
		return fmt.Errorf("%w: %d bytes, max_len %d", tlv.ErrParse, n, spec.MaxLen)
	}
	return nil
}
