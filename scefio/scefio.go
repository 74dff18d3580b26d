// Package scefio provides the byte-stream adapters SCEF's core leaves to
// external collaborators: a file-backed stream and an in-memory buffer
// stream, both satisfying scef.InputStream/scef.OutputStream.
package scefio

import (
	"os"

	"github.com/scef-format/scef"
)

// FileInput is a scef.InputStream backed by an *os.File, read fully into
// memory on construction (SCEF documents are whole configuration files,
// not arbitrarily large streams).
type FileInput struct {
	data   []byte
	pos    uint64
	status scef.StreamStatus
}

// OpenFile opens path and returns a FileInput over its contents. If the
// file cannot be opened, a FileInput with StatusFileNotFound or
// StatusCannotRead is returned so callers can still call Status() uniformly.
func OpenFile(path string) *FileInput {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileInput{status: scef.StatusFileNotFound}
		}
		return &FileInput{status: scef.StatusCannotRead}
	}
	return &FileInput{data: data}
}

// NewBytesInput wraps an in-memory byte slice as a scef.InputStream.
func NewBytesInput(data []byte) *FileInput {
	return &FileInput{data: data}
}

func (f *FileInput) Read(buf []byte, n int) int {
	if f.status != scef.StatusOK && len(f.data) == 0 {
		return 0
	}
	remaining := uint64(len(f.data)) - f.pos
	want := uint64(n)
	if want > remaining {
		want = remaining
	}
	copy(buf, f.data[f.pos:f.pos+want])
	f.pos += want
	if want < uint64(n) {
		f.status = scef.StatusEndOfStream
	}
	return int(want)
}

func (f *FileInput) Status() scef.StreamStatus {
	if f.status != scef.StatusOK {
		return f.status
	}
	if f.pos >= uint64(len(f.data)) {
		return scef.StatusEndOfStream
	}
	return scef.StatusOK
}

func (f *FileInput) Position() uint64 { return f.pos }
func (f *FileInput) Size() uint64     { return uint64(len(f.data)) }
func (f *FileInput) Seek(pos uint64) {
	f.pos = pos
	if f.status == scef.StatusEndOfStream {
		f.status = scef.StatusOK
	}
}

// BufferOutput is a scef.OutputStream backed by a growable in-memory
// buffer, readable back out via Bytes.
type BufferOutput struct {
	buf []byte
}

// NewBufferOutput returns an empty BufferOutput.
func NewBufferOutput() *BufferOutput {
	return &BufferOutput{}
}

func (b *BufferOutput) Write(buf []byte, n int) scef.StreamStatus {
	b.buf = append(b.buf, buf[:n]...)
	return scef.StatusOK
}

// Bytes returns the accumulated output.
func (b *BufferOutput) Bytes() []byte { return b.buf }

// FileOutput is a scef.OutputStream backed by an *os.File opened for
// writing, buffering in memory and flushing on Close.
type FileOutput struct {
	f   *os.File
	buf []byte
}

// CreateFile truncates or creates path for writing.
func CreateFile(path string) (*FileOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileOutput{f: f}, nil
}

func (fo *FileOutput) Write(buf []byte, n int) scef.StreamStatus {
	fo.buf = append(fo.buf, buf[:n]...)
	return scef.StatusOK
}

// Close flushes buffered bytes to disk and closes the underlying file.
func (fo *FileOutput) Close() error {
	if _, err := fo.f.Write(fo.buf); err != nil {
		fo.f.Close()
		return err
	}
	return fo.f.Close()
}
