// Package message provides the byte storage TLV records are read from and
// appended to.
package message

import (
	"errors"
	"fmt"
)

// MaxLength is the largest message a 16-bit length can describe.
const MaxLength = 0xFFFF

var (
	ErrOutOfRange = errors.New("message: out of range")
	ErrTooLarge   = errors.New("message: too large")
)

// Message is a growable byte buffer with a read offset. The zero value is an
// empty message limited to MaxLength bytes. Not safe for concurrent use.
type Message struct {
	data   []byte
	offset int
	// limit applies only when limited is set, so the zero value keeps
	// MaxLength and NewWithLimit(0) means no room at all.
	limit   int
	limited bool
}

func New() *Message {
	return &Message{}
}

// NewWithLimit returns an empty message that refuses to grow past limit
// bytes. limit is clamped to 0..MaxLength.
func NewWithLimit(limit int) *Message {
	return &Message{limit: min(max(limit, 0), MaxLength), limited: true}
}

// FromBytes returns a message holding a copy of b.
func FromBytes(b []byte) (*Message, error) {
	m := New()
	if err := m.Append(b); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Message) maxLen() int {
	if !m.limited {
		return MaxLength
	}
	return m.limit
}

func (m *Message) Len() int {
	return len(m.data)
}

func (m *Message) ReadOffset() int {
	return m.offset
}

// SetReadOffset moves the position scanning starts from.
func (m *Message) SetReadOffset(off int) error {
	if off < 0 || off > len(m.data) {
		return fmt.Errorf("%w: read offset %d, length %d", ErrOutOfRange, off, len(m.data))
	}
	m.offset = off
	return nil
}

// ReadAt copies len(p) bytes starting at off into p. Nothing is copied when
// the range does not fit.
func (m *Message) ReadAt(off int, p []byte) error {
	if off < 0 || len(p) > len(m.data)-off {
		return fmt.Errorf("%w: read %d bytes at %d, length %d", ErrOutOfRange, len(p), off, len(m.data))
	}
	copy(p, m.data[off:])
	return nil
}

// Append adds p to the end of the message. The message is unchanged when the
// result would exceed its limit.
func (m *Message) Append(p []byte) error {
	if len(p) > m.maxLen()-len(m.data) {
		return fmt.Errorf("%w: %d + %d bytes exceeds %d", ErrTooLarge, len(m.data), len(p), m.maxLen())
	}
	m.data = append(m.data, p...)
	return nil
}

// Bytes returns the message contents. The slice aliases the message.
func (m *Message) Bytes() []byte {
	return m.data
}

// Truncate drops everything from n on, clamping the read offset.
func (m *Message) Truncate(n int) error {
	if n < 0 || n > len(m.data) {
		return fmt.Errorf("%w: truncate to %d, length %d", ErrOutOfRange, n, len(m.data))
	}
	m.data = m.data[:n]
	m.offset = min(m.offset, n)
	return nil
}
