package stream

import (
	"bytes"
	"io"
	"testing"
)

type memRSC struct {
	*bytes.Reader
}

func (m memRSC) Close() error { return nil }

func newMemStream(data []byte) *FileStream {
	return NewFileStream(memRSC{bytes.NewReader(data)})
}

func TestFileStream_ReadAndTell(t *testing.T) {
	s := newMemStream([]byte("hello world"))
	buf := make([]byte, 5)
	n, err := s.Read(buf)
	if err != nil || n != 5 {
		t.Fatalf("unexpected read result: n=%d err=%v", n, err)
	}
	if string(buf) != "hello" {
		t.Fatalf("expected 'hello', got %q", buf)
	}
	pos, err := s.Tell()
	if err != nil || pos != 5 {
		t.Fatalf("expected position 5, got %d (%v)", pos, err)
	}
}

func TestFileStream_SeekAndReread(t *testing.T) {
	s := newMemStream([]byte("0123456789"))
	if _, err := s.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, 3)
	s.Read(buf)
	if string(buf) != "567" {
		t.Fatalf("expected '567', got %q", buf)
	}
}

func TestFileStream_Close(t *testing.T) {
	s := newMemStream([]byte("x"))
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
