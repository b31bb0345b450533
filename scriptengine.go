package syzcore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/intuitionamiga/syzcore/internal/generator"
)

// ScriptEngine adapts a Context to internal/script.Engine, so the demo
// CLI's Lua console can drive a live Context by source/generator/effect
// kind name instead of linking against the concrete Go types directly.
type ScriptEngine struct {
	ctx *Context
}

// NewScriptEngine wraps ctx for use as a script.Engine.
func NewScriptEngine(ctx *Context) *ScriptEngine { return &ScriptEngine{ctx: ctx} }

// CreateSource creates a source of the named kind: "direct", "panned", or
// "3d".
func (s *ScriptEngine) CreateSource(kind string) (int, error) {
	var (
		h   Handle
		err error
	)
	switch kind {
	case "direct":
		h, err = s.ctx.CreateDirectSource(2)
	case "panned":
		h, err = s.ctx.CreatePannedSource(2)
	case "3d":
		h, err = s.ctx.CreateSource3D(2)
	default:
		return 0, fmt.Errorf("script: unknown source kind %q", kind)
	}
	if err != nil {
		return 0, err
	}
	return int(h), nil
}

// CreateGenerator creates a generator of the named kind: "noise" (args:
// spectrum=white|oneoverf|pink, seed) or "sine" (args: freqs, amps as
// comma-separated lists, sigma=true|false).
func (s *ScriptEngine) CreateGenerator(kind string, args map[string]string) (int, error) {
	switch kind {
	case "noise":
		nk := generator.NoiseWhite
		switch args["spectrum"] {
		case "oneoverf":
			nk = generator.NoiseFilteredOneOverF
		case "pink":
			nk = generator.NoisePinkVossMcCartney
		}
		seed, _ := strconv.ParseInt(args["seed"], 10, 64)
		return int(s.ctx.CreateNoiseGenerator(nk, 2, seed)), nil
	case "sine":
		freqs := parseFloatList(args["freqs"])
		amps := parseAmpList(args["amps"])
		if len(amps) < len(freqs) {
			padded := make([]float32, len(freqs))
			copy(padded, amps)
			for i := len(amps); i < len(freqs); i++ {
				padded[i] = 1
			}
			amps = padded
		}
		sigma := args["sigma"] == "true"
		return int(s.ctx.CreateSineBankGenerator(freqs, amps, sigma)), nil
	default:
		return 0, fmt.Errorf("script: unknown generator kind %q", kind)
	}
}

// CreateEffect creates an effect of the named kind: "echo" or "reverb",
// each with a reasonable fixed default (1 second of delay memory, 2
// seconds of T60) retunable afterward via SetEchoTaps/SetReverbT60.
func (s *ScriptEngine) CreateEffect(kind string) (int, error) {
	switch kind {
	case "echo":
		return int(s.ctx.CreateEcho(SampleRate)), nil
	case "reverb":
		return int(s.ctx.CreateReverb(2.0)), nil
	default:
		return 0, fmt.Errorf("script: unknown effect kind %q", kind)
	}
}

func (s *ScriptEngine) AttachGenerator(sourceHandle, generatorHandle int) error {
	return s.ctx.AttachGenerator(Handle(sourceHandle), Handle(generatorHandle))
}

// SetProperty sets "gain" or "pan" on a source handle. Position, being
// three-dimensional, is not settable through this single-float interface;
// callers needing it should use Context.SetPosition directly.
func (s *ScriptEngine) SetProperty(handle int, name string, value float64) error {
	switch name {
	case "gain":
		return s.ctx.SetGain(Handle(handle), value)
	case "pan":
		return s.ctx.SetPan(Handle(handle), value)
	default:
		return ErrUnknownProperty
	}
}

func (s *ScriptEngine) ConfigRoute(sourceHandle, effectHandle int, gain, fadeSeconds float64) error {
	return s.ctx.ConfigRoute(Handle(sourceHandle), Handle(effectHandle), float32(gain), fadeSeconds)
}

func (s *ScriptEngine) RemoveRoute(sourceHandle, effectHandle int, fadeSeconds float64) error {
	return s.ctx.RemoveRoute(Handle(sourceHandle), Handle(effectHandle), fadeSeconds)
}

func parseFloatList(s string) []float64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

func parseAmpList(s string) []float32 {
	fs := parseFloatList(s)
	out := make([]float32, len(fs))
	for i, v := range fs {
		out[i] = float32(v)
	}
	return out
}
