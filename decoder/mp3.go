package decoder

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/intuitionamiga/syzcore/stream"
)

func init() {
	Register("mp3", func(s stream.Stream) (Decoder, error) { return NewMP3Decoder(s) })
}

// MP3Decoder decodes MPEG audio via hajimehoshi/go-mp3, which always
// produces 16-bit stereo PCM regardless of the source file's channel
// layout.
type MP3Decoder struct {
	dec        *mp3.Decoder
	sampleRate int
	scratch    []byte
}

// NewMP3Decoder opens s as an MP3 stream.
func NewMP3Decoder(s stream.Stream) (*MP3Decoder, error) {
	dec, err := mp3.NewDecoder(s)
	if err != nil {
		return nil, fmt.Errorf("decoder: opening MP3 stream: %w", err)
	}
	return &MP3Decoder{dec: dec, sampleRate: dec.SampleRate()}, nil
}

func (m *MP3Decoder) Channels() int   { return 2 }
func (m *MP3Decoder) SampleRate() int { return m.sampleRate }

// Decode fills dst with up to len(dst) interleaved stereo samples.
func (m *MP3Decoder) Decode(dst []float32) (int, error) {
	need := len(dst) * 2
	if len(m.scratch) < need {
		m.scratch = make([]byte, need)
	}
	buf := m.scratch[:need]
	n, err := io.ReadFull(m.dec, buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	frameSamples := n / 2
	for i := 0; i < frameSamples; i++ {
		s := int16(buf[i*2]) | int16(buf[i*2+1])<<8
		dst[i] = float32(s) / 32768.0
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return frameSamples, err
}

// Seek is not implemented: go-mp3 exposes byte-granular seeking on the
// compressed stream, not frame-accurate PCM seeking, and no caller needs
// it yet.
func (m *MP3Decoder) Seek(frame int64) error {
	return fmt.Errorf("decoder: MP3 seek not implemented")
}
