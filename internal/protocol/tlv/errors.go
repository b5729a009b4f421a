package tlv

import "errors"

var (
	ErrNotFound      = errors.New("tlv: record not found")
	ErrParse         = errors.New("tlv: malformed record")
	ErrRange         = errors.New("tlv: offset out of range")
	ErrPartialAppend = errors.New("tlv: header appended without value")
)
