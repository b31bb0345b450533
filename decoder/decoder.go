// Package decoder implements the Decoder boundary buffers and streaming
// generators pull PCM through, plus a small format-sniffing registry so
// callers can open a stream without knowing its container format ahead
// of time.
package decoder

import "github.com/intuitionamiga/syzcore/stream"

// Decoder pulls interleaved float32 PCM from an underlying stream.Stream.
type Decoder interface {
	// Decode fills dst with as many interleaved samples as are
	// available, up to len(dst), returning the number of samples
	// written. It returns io.EOF once no more data is available.
	Decode(dst []float32) (samplesFilled int, err error)

	// Seek repositions decoding to the given frame index. Decoders that
	// cannot seek (e.g. a streaming MP3/Vorbis decode) return an error.
	Seek(frame int64) error

	Channels() int
	SampleRate() int
}

// Factory opens a Decoder from a stream whose format has already been
// identified.
type Factory func(s stream.Stream) (Decoder, error)

var registry = map[string]Factory{}

// Register adds a decoder factory under the given format name (e.g.
// "wav", "mp3", "vorbis"). Called from each format's init.
func Register(format string, factory Factory) {
	registry[format] = factory
}

// Open sniffs s's container format from its leading bytes and constructs
// the matching Decoder, seeking s back to the start first.
func Open(s stream.Stream) (Decoder, error) {
	format, err := sniff(s)
	if err != nil {
		return nil, err
	}
	factory, ok := registry[format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return factory(s)
}

// UnsupportedFormatError is returned by Open when the sniffed format has
// no registered decoder.
type UnsupportedFormatError struct{ Format string }

func (e *UnsupportedFormatError) Error() string {
	return "decoder: unsupported format " + e.Format
}

func sniff(s stream.Stream) (string, error) {
	var magic [12]byte
	if _, err := s.Read(magic[:]); err != nil {
		return "", err
	}
	if _, err := s.Seek(0, 0); err != nil {
		return "", err
	}

	switch {
	case string(magic[0:4]) == "RIFF" && string(magic[8:12]) == "WAVE":
		return "wav", nil
	case string(magic[0:4]) == "OggS":
		return "vorbis", nil
	case magic[0] == 0xFF && magic[1]&0xE0 == 0xE0:
		return "mp3", nil
	case string(magic[0:3]) == "ID3":
		return "mp3", nil
	default:
		return "", &UnsupportedFormatError{Format: "unknown"}
	}
}
