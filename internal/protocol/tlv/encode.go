package tlv

import "fmt"

// Append writes a short record for value at the end of buf. Values longer
// than MaxShortValue are a caller bug and panic.
//
// If the header lands but the value does not, the returned error wraps
// ErrPartialAppend: buf now ends in a record missing its value and must not
// be used further.
func Append(buf Buffer, typ uint8, value []byte) error {
	if len(value) > MaxShortValue {
		panic(fmt.Sprintf("tlv: value of %d bytes exceeds short record limit %d", len(value), MaxShortValue))
	}
	var hdr [HeaderSize]byte
	if err := buf.Append(NewHeader(typ, len(value)).AppendTo(hdr[:0])); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	if err := buf.Append(value); err != nil {
		return fmt.Errorf("%w: type %d: %w", ErrPartialAppend, typ, err)
	}
	return nil
}

// AppendUint appends v big-endian in T's width.
func AppendUint[T Uint](buf Buffer, typ uint8, v T) error {
	var raw [4]byte
	n := width[T]()
	for i := range n {
		raw[i] = byte(uint64(v) >> (8 * (n - 1 - i)))
	}
	return Append(buf, typ, raw[:n])
}

// AppendString appends up to maxLen bytes of s, capped at MaxShortValue.
// No terminator is written.
func AppendString(buf Buffer, typ uint8, s string, maxLen int) error {
	n := max(0, min(len(s), maxLen, MaxShortValue))
	return Append(buf, typ, []byte(s[:n]))
}
