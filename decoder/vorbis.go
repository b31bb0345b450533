package decoder

import (
	"fmt"

	"github.com/jfreymuth/oggvorbis"

	"github.com/intuitionamiga/syzcore/stream"
)

func init() {
	Register("vorbis", func(s stream.Stream) (Decoder, error) { return NewVorbisDecoder(s) })
}

// VorbisDecoder decodes Ogg Vorbis via jfreymuth/oggvorbis, which already
// produces float32 samples in the engine's native convention.
type VorbisDecoder struct {
	r *oggvorbis.Reader
}

// NewVorbisDecoder opens s as an Ogg Vorbis stream.
func NewVorbisDecoder(s stream.Stream) (*VorbisDecoder, error) {
	r, err := oggvorbis.NewReader(s)
	if err != nil {
		return nil, fmt.Errorf("decoder: opening Vorbis stream: %w", err)
	}
	return &VorbisDecoder{r: r}, nil
}

func (v *VorbisDecoder) Channels() int   { return v.r.Channels() }
func (v *VorbisDecoder) SampleRate() int { return v.r.SampleRate() }

func (v *VorbisDecoder) Decode(dst []float32) (int, error) {
	return v.r.Read(dst)
}

// Seek is not implemented: the pack's Vorbis decoder doesn't expose
// sample-accurate seeking and no caller needs it yet.
func (v *VorbisDecoder) Seek(frame int64) error {
	return fmt.Errorf("decoder: Vorbis seek not implemented")
}
