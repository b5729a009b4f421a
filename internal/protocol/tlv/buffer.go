package tlv

// Buffer is the message storage the codec reads from and appends to.
// Implementations bounds-check ReadAt and grow on Append.
type Buffer interface {
	// ReadOffset is where scanning starts.
	ReadOffset() int
	// Len is the number of valid bytes.
	Len() int
	// ReadAt fills p from off, failing if off+len(p) > Len().
	ReadAt(off int, p []byte) error
	// Append adds p at the end of the buffer.
	Append(p []byte) error
}
