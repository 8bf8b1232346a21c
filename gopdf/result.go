package gopdf

import (
	"bytes"
	"io"
	"os"
)

// Result holds the outcome of a successful conversion: either the document
// bytes or, when a filename was requested, the HostedFile descriptor.
type Result struct {
	data []byte
	file HostedFile
}

// Bytes returns the raw document content. It is nil for hosted results.
func (r *Result) Bytes() []byte {
	return r.data
}

// HostedFile returns the descriptor of a document kept by the server
func (r *Result) HostedFile() HostedFile {
	return r.file
}

// IsHosted reports whether the server kept the document remotely
func (r *Result) IsHosted() bool {
	return r.file != nil
}

// Len returns the size of the document in bytes
func (r *Result) Len() int {
	return len(r.data)
}

// Reader returns a reader over the document content
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full document content to w. It implements io.WriterTo.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the document bytes to path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}
