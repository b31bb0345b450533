// Package stream defines the byte-oriented input abstraction decoders
// read from, so a decoder never needs to know whether its bytes come
// from a file, an in-memory buffer, or a network source.
package stream

import "io"

// Stream is a seekable byte source.
type Stream interface {
	io.Reader
	io.Closer

	// Seek repositions the stream, following io.Seeker's whence
	// convention.
	Seek(offset int64, whence int) (int64, error)

	// Tell reports the current byte offset.
	Tell() (int64, error)
}

// FileStream is a Stream backed by an *os.File-like ReadSeekCloser. It is
// defined generically over that interface rather than *os.File directly
// so tests can substitute an in-memory stand-in without touching disk.
type FileStream struct {
	rsc ReadSeekCloser
}

// ReadSeekCloser is the subset of *os.File that FileStream needs.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// NewFileStream wraps rsc as a Stream.
func NewFileStream(rsc ReadSeekCloser) *FileStream {
	return &FileStream{rsc: rsc}
}

func (f *FileStream) Read(p []byte) (int, error) { return f.rsc.Read(p) }

func (f *FileStream) Seek(offset int64, whence int) (int64, error) {
	return f.rsc.Seek(offset, whence)
}

func (f *FileStream) Tell() (int64, error) {
	return f.rsc.Seek(0, io.SeekCurrent)
}

func (f *FileStream) Close() error { return f.rsc.Close() }
