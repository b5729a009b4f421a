package tlv

import (
	"fmt"
	"iter"
)

// Record is a validated record located in a buffer.
type Record struct {
	Offset int
	Header Header
}

func (r Record) Type() uint8 {
	return r.Header.Type
}

// Size returns header plus value bytes.
func (r Record) Size() int {
	return r.Header.TotalSize()
}

func (r Record) ValueOffset() int {
	return r.Header.ValueOffset(r.Offset)
}

func (r Record) ValueLength() int {
	return r.Header.Length
}

// End returns the offset just past the record.
func (r Record) End() int {
	return r.Offset + r.Size()
}

// walker steps over records from the buffer's read offset. Every size is
// checked against the remaining bytes before the walker moves past it.
type walker struct {
	buf       Buffer
	offset    int
	remaining int
}

func newWalker(buf Buffer) (*walker, error) {
	off, n := buf.ReadOffset(), buf.Len()
	if off < 0 || off > n {
		return nil, fmt.Errorf("%w: read offset %d, length %d", ErrRange, off, n)
	}
	return &walker{buf: buf, offset: off, remaining: n - off}, nil
}

// next returns the record at the walker's position. ok is false once the
// remaining bytes cannot hold another header.
func (w *walker) next() (rec Record, ok bool, err error) {
	h, ok, err := readHeader(w.buf, w.offset, w.remaining)
	if err != nil || !ok {
		return Record{}, false, err
	}
	if h.Extended && h.Length > w.remaining-ExtendedHeaderSize {
		return Record{}, false, fmt.Errorf(
			"%w: extended record at %d declares %d value bytes, %d remain",
			ErrParse, w.offset, h.Length, w.remaining-ExtendedHeaderSize,
		)
	}

	size := h.TotalSize()
	if size > w.remaining {
		return Record{}, false, fmt.Errorf(
			"%w: record at %d declares %d bytes, %d remain",
			ErrParse, w.offset, size, w.remaining,
		)
	}

	rec = Record{Offset: w.offset, Header: h}
	w.offset += size
	w.remaining -= size
	return rec, true, nil
}

// Records yields every record from the buffer's read offset in order. It
// stops quietly when the tail is too short for another header, and yields a
// single error (then stops) when a declared length overruns the buffer.
func Records(buf Buffer) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		w, err := newWalker(buf)
		if err != nil {
			yield(Record{}, err)
			return
		}
		for {
			rec, ok, err := w.next()
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !ok || !yield(rec, nil) {
				return
			}
		}
	}
}

// Extent returns the offset just past the last well-formed record, which is
// the read offset when there are none. Bytes between Extent and Len do not
// form a header.
func Extent(buf Buffer) (int, error) {
	end := buf.ReadOffset()
	for rec, err := range Records(buf) {
		if err != nil {
			return 0, err
		}
		end = rec.End()
	}
	return end, nil
}

// Find returns the first record of type typ.
func Find(buf Buffer, typ uint8) (Record, error) {
	for rec, err := range Records(buf) {
		if err != nil {
			return Record{}, err
		}
		if rec.Type() == typ {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: type %d", ErrNotFound, typ)
}

// FindValueSpan returns the value offset and length of the first record of
// type typ.
func FindValueSpan(buf Buffer, typ uint8) (valueOffset, length int, err error) {
	rec, err := Find(buf, typ)
	if err != nil {
		return 0, 0, err
	}
	return rec.ValueOffset(), rec.ValueLength(), nil
}

// CopyRecord copies the first record of type typ, header included, into out.
// At most len(out) bytes are copied; the count is returned.
func CopyRecord(buf Buffer, typ uint8, out []byte) (int, error) {
	rec, err := Find(buf, typ)
	if err != nil {
		return 0, err
	}
	n := min(len(out), rec.Size())
	if err := buf.ReadAt(rec.Offset, out[:n]); err != nil {
		return 0, err
	}
	return n, nil
}
