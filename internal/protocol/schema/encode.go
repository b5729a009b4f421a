package schema

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// truncater is a buffer that can drop a failed tail, like message.Message.
type truncater interface {
	Truncate(n int) error
}

// encoded is a field value parsed and checked, ready to append.
type encoded struct {
	spec  FieldSpec
	num   uint64
	value []byte
}

// Encode appends one record per named value, in schema order. Integers
// accept any strconv base prefix, bytes are hex. Missing required fields and
// unknown names are rejected before anything is appended. If an append
// fails and buf can be truncated, buf is rolled back to its original length.
func Encode(buf tlv.Buffer, s *Schema, values map[string]string) error {
	for name := range values {
		if _, ok := s.ByName(name); !ok {
			return ValidationError{Name: name, Reason: "unknown field"}
		}
	}

	records := make([]encoded, 0, len(values))
	for _, f := range s.Fields {
		raw, ok := values[f.Name]
		if !ok {
			if f.Required {
				return ValidationError{Type: f.Type, Name: f.Name, Reason: "missing required field"}
			}
			continue
		}
		rec, err := encodeValue(f, raw)
		if err != nil {
			return ValidationError{Type: f.Type, Name: f.Name, Reason: "invalid value", Err: err}
		}
		records = append(records, rec)
	}

	start := buf.Len()
	for _, r := range records {
		if err := appendField(buf, r); err != nil {
			err = fmt.Errorf("append %s: %w", r.spec.Name, err)
			if t, ok := buf.(truncater); ok {
				if terr := t.Truncate(start); terr != nil {
					return fmt.Errorf("%w (rollback: %w)", err, terr)
				}
				log.Warn().Err(err).Str("schema", s.Name).Int("bytes", start).Msg("schema.Encode rolled back")
			}
			return err
		}
	}
	log.Debug().Str("schema", s.Name).Int("records", len(records)).Int("bytes", buf.Len()).Msg("schema.Encode")
	return nil
}

func appendField(buf tlv.Buffer, r encoded) error {
	switch r.spec.Kind {
	case KindU8:
		return tlv.AppendUint(buf, r.spec.Type, uint8(r.num))
	case KindU16:
		return tlv.AppendUint(buf, r.spec.Type, uint16(r.num))
	case KindU32:
		return tlv.AppendUint(buf, r.spec.Type, uint32(r.num))
	default:
		return tlv.Append(buf, r.spec.Type, r.value)
	}
}

func encodeValue(f FieldSpec, raw string) (encoded, error) {
	out := encoded{spec: f}
	switch f.Kind {
	case KindU8, KindU16, KindU32:
		bits := map[Kind]int{KindU8: 8, KindU16: 16, KindU32: 32}[f.Kind]
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 0, bits)
		if err != nil {
			return encoded{}, err
		}
		out.num = v
		return out, nil
	case KindString:
		out.value = []byte(raw)
	default:
		b, err := hex.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return encoded{}, err
		}
		out.value = b
	}
	if err := checkEncoded(f, out.value); err != nil {
		return encoded{}, err
	}
	return out, nil
}

func checkEncoded(f FieldSpec, b []byte) error {
	if len(b) > tlv.MaxShortValue {
		return fmt.Errorf("%d bytes exceeds short record limit %d", len(b), tlv.MaxShortValue)
	}
	return checkLength(f, len(b))
}
