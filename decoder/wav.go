package decoder

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/intuitionamiga/syzcore/stream"
)

func init() {
	Register("wav", func(s stream.Stream) (Decoder, error) { return NewWAVDecoder(s) })
}

// WAVDecoder decodes PCM WAV data via go-audio/wav, converting its
// integer samples to the engine's float32 [-1, 1] convention.
type WAVDecoder struct {
	dec        *wav.Decoder
	channels   int
	sampleRate int
	maxValue   float64
}

// NewWAVDecoder opens s as a WAV stream. s must already be positioned at
// the start of the RIFF header.
func NewWAVDecoder(s stream.Stream) (*WAVDecoder, error) {
	d := wav.NewDecoder(s)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("decoder: not a valid WAV stream")
	}
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("decoder: reading WAV header: %w", err)
	}

	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	return &WAVDecoder{
		dec:        d,
		channels:   int(d.NumChans),
		sampleRate: int(d.SampleRate),
		maxValue:   float64(int64(1) << (bitDepth - 1)),
	}, nil
}

func (w *WAVDecoder) Channels() int   { return w.channels }
func (w *WAVDecoder) SampleRate() int { return w.sampleRate }

// Decode fills dst with up to len(dst) interleaved samples, converted
// from the file's native integer PCM to float32.
func (w *WAVDecoder) Decode(dst []float32) (int, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: w.channels, SampleRate: w.sampleRate},
		Data:   make([]int, len(dst)),
	}
	n, err := w.dec.PCMBuffer(buf)
	if err != nil {
		return 0, fmt.Errorf("decoder: reading WAV PCM: %w", err)
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(float64(buf.Data[i]) / w.maxValue)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Seek is not supported: go-audio/wav decodes sequentially and this
// engine has no need yet to seek within a WAV stream (streaming
// generators only ever play forward). BufferGenerator seeking works on
// the fully-decoded in-memory Buffer instead, not on the decoder.
func (w *WAVDecoder) Seek(frame int64) error {
	return fmt.Errorf("decoder: WAV seek not supported")
}
