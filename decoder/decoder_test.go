package decoder

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/intuitionamiga/syzcore/stream"
)

type memRSC struct{ *bytes.Reader }

func (m memRSC) Close() error { return nil }

func newMemStream(data []byte) stream.Stream {
	return stream.NewFileStream(memRSC{bytes.NewReader(data)})
}

// buildMinimalWAV constructs a valid minimal PCM WAV file with the given
// mono 16-bit samples, for exercising the sniff+decode path without a
// bundled fixture file.
func buildMinimalWAV(samples []int16) []byte {
	var buf bytes.Buffer
	dataBytes := len(samples) * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataBytes))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // mono
	binary.Write(&buf, binary.LittleEndian, uint32(44100))
	binary.Write(&buf, binary.LittleEndian, uint32(44100*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))       // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))      // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataBytes))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestSniff_DetectsWAV(t *testing.T) {
	data := buildMinimalWAV([]int16{0, 16384, -16384})
	s := newMemStream(data)
	dec, err := Open(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Channels() != 1 || dec.SampleRate() != 44100 {
		t.Fatalf("unexpected format: channels=%d rate=%d", dec.Channels(), dec.SampleRate())
	}
}

func TestWAVDecoder_DecodesToNormalizedFloat(t *testing.T) {
	data := buildMinimalWAV([]int16{0, 16384, -16384, 32767})
	s := newMemStream(data)
	dec, err := NewWAVDecoder(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make([]float32, 4)
	n, err := dec.Decode(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}
	if out[0] != 0 {
		t.Fatalf("expected first sample 0, got %v", out[0])
	}
	if out[1] < 0.49 || out[1] > 0.51 {
		t.Fatalf("expected ~0.5, got %v", out[1])
	}
}

func TestOpen_UnknownFormatReturnsError(t *testing.T) {
	s := newMemStream([]byte("not audio data at all, just plain text"))
	if _, err := Open(s); err == nil {
		t.Fatal("expected an error for unrecognized format")
	}
}

func TestUnsupportedFormatError_MessageNamesFormat(t *testing.T) {
	err := &UnsupportedFormatError{Format: "flac"}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}
