package tlv

import (
	"fmt"
	"math/bits"
)

// Uint is the set of fixed-width integers a record value can carry.
type Uint interface {
	~uint8 | ~uint16 | ~uint32
}

// width returns the encoded size of T in bytes.
func width[T Uint]() int {
	return bits.Len64(uint64(^T(0))) / 8
}

// ReadSpan reads the header at off and returns where its value starts and
// how long it is. A record that would run past the buffer is ErrParse.
func ReadSpan(buf Buffer, off int) (valueOffset, length int, err error) {
	h, err := ReadHeader(buf, off)
	if err != nil {
		return 0, 0, err
	}
	if off+h.TotalSize() > buf.Len() {
		return 0, 0, fmt.Errorf(
			"%w: record at %d needs %d bytes, buffer has %d",
			ErrParse, off, h.TotalSize(), buf.Len(),
		)
	}
	return h.ValueOffset(off), h.Length, nil
}

// ReadValue fills out with the first len(out) value bytes of the record at
// off. A value shorter than out is ErrParse.
func ReadValue(buf Buffer, off int, out []byte) error {
	valueOffset, length, err := ReadSpan(buf, off)
	if err != nil {
		return err
	}
	if length < len(out) {
		return fmt.Errorf("%w: record at %d has %d value bytes, want %d", ErrParse, off, length, len(out))
	}
	return buf.ReadAt(valueOffset, out)
}

// ReadUint decodes the record at off as a big-endian integer of T's width.
// Extra value bytes past the width are ignored.
func ReadUint[T Uint](buf Buffer, off int) (T, error) {
	var raw [4]byte
	b := raw[:width[T]()]
	if err := ReadValue(buf, off, b); err != nil {
		return 0, err
	}
	var acc uint32
	for _, c := range b {
		acc = acc<<8 | uint32(c)
	}
	return T(acc), nil
}

// ReadString returns at most maxLen value bytes of the record at off.
func ReadString(buf Buffer, off int, maxLen int) (string, error) {
	valueOffset, length, err := ReadSpan(buf, off)
	if err != nil {
		return "", err
	}
	b := make([]byte, max(0, min(length, maxLen)))
	if err := buf.ReadAt(valueOffset, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadCString copies the value of the record at off into out as a
// NUL-terminated string and returns the number of bytes before the NUL.
// At most len(out)-1 bytes are copied; the terminator goes at out[n].
func ReadCString(buf Buffer, off int, out []byte) (int, error) {
	if len(out) == 0 {
		return 0, fmt.Errorf("%w: no room for terminator", ErrRange)
	}
	valueOffset, length, err := ReadSpan(buf, off)
	if err != nil {
		return 0, err
	}
	n := min(length, len(out)-1)
	if err := buf.ReadAt(valueOffset, out[:n]); err != nil {
		return 0, err
	}
	out[n] = 0
	return n, nil
}

// FindUint decodes the first record of type typ as an integer.
func FindUint[T Uint](buf Buffer, typ uint8) (T, error) {
	rec, err := Find(buf, typ)
	if err != nil {
		return 0, err
	}
	return ReadUint[T](buf, rec.Offset)
}

// FindString returns at most maxLen value bytes of the first record of type typ.
func FindString(buf Buffer, typ uint8, maxLen int) (string, error) {
	rec, err := Find(buf, typ)
	if err != nil {
		return "", err
	}
	return ReadString(buf, rec.Offset, maxLen)
}

func FindCString(buf Buffer, typ uint8, out []byte) (int, error) {
	rec, err := Find(buf, typ)
	if err != nil {
		return 0, err
	}
	return ReadCString(buf, rec.Offset, out)
}

// FindValue fills out from the first record of type typ, which must carry at
// least len(out) value bytes.
func FindValue(buf Buffer, typ uint8, out []byte) error {
	rec, err := Find(buf, typ)
	if err != nil {
		return err
	}
	return ReadValue(buf, rec.Offset, out)
}
