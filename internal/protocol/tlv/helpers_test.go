package tlv

import (
	"testing"

	"github.com/danmuck/msgtlv/internal/protocol/message"
)

func newMessage(t testing.TB, b ...byte) *message.Message {
	t.Helper()
	m, err := message.FromBytes(b)
	if err != nil {
		t.Fatalf("message from bytes: %v", err)
	}
	return m
}

// offsetBuffer reports a read offset the message itself would refuse.
type offsetBuffer struct {
	*message.Message
	offset int
}

func (b offsetBuffer) ReadOffset() int {
	return b.offset
}
