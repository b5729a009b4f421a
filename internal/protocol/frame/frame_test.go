package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/tlv"
)

func TestReadWriteFrameRoundTrip(t *testing.T) {
	msg := message.New()
	if err := tlv.AppendString(msg, 1, "intent-1", 64); err != nil {
		t.Fatalf("append: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, msg.Bytes(), DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(out.Bytes(), msg.Bytes()) {
		t.Fatalf("message mismatch: got=%x want=%x", out.Bytes(), msg.Bytes())
	}
	got, err := tlv.FindString(out, 1, 64)
	if err != nil || got != "intent-1" {
		t.Fatalf("find string: got=%q err=%v", got, err)
	}
	if _, err := ReadFrame(&buf, DefaultLimits()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReadAllFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, b := range [][]byte{{1, 1, 'a'}, {}, {2, 2, 0, 9}} {
		if err := WriteFrame(&buf, b, DefaultLimits()); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	msgs, err := ReadAll(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(msgs) != 3 || msgs[1].Len() != 0 || msgs[2].Len() != 4 {
		t.Fatalf("unexpected frames: %d", len(msgs))
	}
}

func TestReadFrameMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x74, 0x76, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameBadMagic(t *testing.T) {
	buf := EncodeHeader(Header{Magic: 0x0102, Length: 0})
	_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestReadFrameRespectsLimit(t *testing.T) {
	buf := EncodeHeader(Header{Magic: Magic, Length: 10})
	_, err := ReadFrame(bytes.NewReader(buf), Limits{MaxMessageBytes: 8})
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestReadFrameTruncatedMessage(t *testing.T) {
	buf := append(EncodeHeader(Header{Magic: Magic, Length: 4}), 1, 2)
	_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, 9), Limits{MaxMessageBytes: 8})
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written, got %d bytes", buf.Len())
	}
}
