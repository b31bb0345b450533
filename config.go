// Package syzcore is the real-time audio synthesis and 3D spatialization
// engine: the block-rate mixing graph, the cross-thread property/command
// protocol, source-to-effect routing, and HRTF/panner spatialization.
package syzcore

const (
	// SampleRate is the engine's fixed output sample rate. The engine does
	// not support arbitrary sample rates; resampling to the device rate is
	// the AudioBackend's problem, not the graph's.
	SampleRate = 44100

	// BlockSize is the number of frames processed per tick.
	BlockSize = 256

	// MaxChannels bounds every per-block scratch bus and the block buffer
	// cache's fixed element size.
	MaxChannels = 8
)
