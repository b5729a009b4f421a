// Package frame carries whole messages back to back on a byte stream.
//
// Each frame is a 4-byte header followed by the message bytes:
//
//	[magic:u16 0x7476][length:u16][message]
//
// Both header fields are big-endian. A message never exceeds
// message.MaxLength, so the u16 length always fits.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/msgtlv/internal/protocol/message"
)

const (
	Magic     uint16 = 0x7476
	HeaderLen        = 4
)

var (
	ErrShortHeader     = errors.New("frame: short header")
	ErrBadMagic        = errors.New("frame: bad magic")
	ErrMessageTooLarge = errors.New("frame: message too large")
)

// Header is the fixed frame header.
type Header struct {
	Magic  uint16
	Length uint16
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxMessageBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxMessageBytes: message.MaxLength}
}

// ReadFrame reads one frame. io.EOF is returned only when r ends cleanly
// before a new header.
func ReadFrame(r io.Reader, limits Limits) (*message.Message, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return nil, err
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: %#04x", ErrBadMagic, h.Magic)
	}
	if int(h.Length) > limits.MaxMessageBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, h.Length, limits.MaxMessageBytes)
	}

	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("frame: read %d message bytes: %w", h.Length, err)
	}
	return message.FromBytes(payload)
}

// ReadAll reads frames until r ends cleanly.
func ReadAll(r io.Reader, limits Limits) ([]*message.Message, error) {
	var out []*message.Message
	for {
		msg, err := ReadFrame(r, limits)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("frame %d: %w", len(out), err)
		}
		out = append(out, msg)
	}
}

func WriteFrame(w io.Writer, b []byte, limits Limits) error {
	if len(b) > limits.MaxMessageBytes || len(b) > message.MaxLength {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(b), min(limits.MaxMessageBytes, message.MaxLength))
	}
	if _, err := w.Write(EncodeHeader(Header{Magic: Magic, Length: uint16(len(b))})); err != nil {
		return err
	}
	if len(b) > 0 {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], h.Magic)
	binary.BigEndian.PutUint16(buf[2:4], h.Length)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("frame: invalid header length: %d", len(b))
	}
	return Header{
		Magic:  binary.BigEndian.Uint16(b[0:2]),
		Length: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}
