package tlv

import (
	"encoding/binary"
	"math"
)

const (
	// HeaderSize is the size of a short header: type + length.
	HeaderSize = 2
	// ExtendedHeaderSize is type + sentinel + 16-bit length.
	ExtendedHeaderSize = 4

	// ExtendedLength in the length byte marks an extended header.
	ExtendedLength uint8 = 0xFF
	// MaxShortValue is the largest value a short header can describe.
	MaxShortValue = 0xFE
	// MaxExtendedValue is the largest value an extended header can describe.
	MaxExtendedValue = 0xFFFF
)

// Header is one decoded record header.
type Header struct {
	Type     uint8
	Extended bool
	Length   int
}

// NewHeader returns the header for a value of the given length, using the
// short form whenever the length fits.
func NewHeader(typ uint8, length int) Header {
	return Header{Type: typ, Extended: length > MaxShortValue, Length: length}
}

func (h Header) IsExtended() bool {
	return h.Extended
}

// Size returns the encoded header size.
func (h Header) Size() int {
	if h.Extended {
		return ExtendedHeaderSize
	}
	return HeaderSize
}

// TotalSize returns header size plus value length.
func (h Header) TotalSize() int {
	return h.Size() + h.Length
}

// ValueOffset returns where the value starts for a header at headerOffset.
func (h Header) ValueOffset(headerOffset int) int {
	return headerOffset + h.Size()
}

// AppendTo appends the wire form of h to dst.
func (h Header) AppendTo(dst []byte) []byte {
	if !h.Extended {
		return append(dst, h.Type, uint8(h.Length))
	}
	dst = append(dst, h.Type, ExtendedLength)
	return binary.BigEndian.AppendUint16(dst, uint16(h.Length))
}

// ReadHeader reads the header at off. The extended length is read only when
// the sentinel is present. Buffer read errors are returned as is.
func ReadHeader(buf Buffer, off int) (Header, error) {
	h, _, err := readHeader(buf, off, math.MaxInt)
	return h, err
}

// readHeader decodes the header at off when avail bytes can hold it. ok is
// false when avail is too short for the header's shape; nothing past the
// short header is read in that case.
func readHeader(buf Buffer, off, avail int) (h Header, ok bool, err error) {
	if avail < HeaderSize {
		return Header{}, false, nil
	}
	var raw [ExtendedHeaderSize]byte
	if err := buf.ReadAt(off, raw[:HeaderSize]); err != nil {
		return Header{}, false, err
	}
	if raw[1] != ExtendedLength {
		return Header{Type: raw[0], Length: int(raw[1])}, true, nil
	}
	if avail < ExtendedHeaderSize {
		return Header{}, false, nil
	}
	if err := buf.ReadAt(off+HeaderSize, raw[HeaderSize:]); err != nil {
		return Header{}, false, err
	}
	return decodeExtended(raw), true, nil
}

func decodeExtended(raw [ExtendedHeaderSize]byte) Header {
	return Header{
		Type:     raw[0],
		Extended: true,
		Length:   int(binary.BigEndian.Uint16(raw[2:4])),
	}
}
