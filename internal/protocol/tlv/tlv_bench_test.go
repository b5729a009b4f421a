package tlv

import (
	"testing"

	"github.com/danmuck/msgtlv/internal/protocol/message"
)

func BenchmarkFindLastOf64(b *testing.B) {
	buf := message.New()
	for i := range 64 {
		if err := AppendUint(buf, uint8(i), uint32(i)); err != nil {
			b.Fatalf("append: %v", err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := FindUint[uint32](buf, 63); err != nil {
			b.Fatalf("find: %v", err)
		}
	}
}

func BenchmarkAppendString(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		buf := message.New()
		if err := AppendString(buf, 1, "benchmark-value", MaxShortValue); err != nil {
			b.Fatalf("append: %v", err)
		}
	}
}
