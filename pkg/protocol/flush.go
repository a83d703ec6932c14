package protocol

import (
	"bufio"
	"io"
)

// FlushWriter buffers writes behind an explicit Flush so a JSON encoder can
// assemble a complete frame before anything reaches the transport.
type FlushWriter struct {
	w *bufio.Writer
}

func NewFlushWriter(w io.Writer) *FlushWriter {
	return &FlushWriter{w: bufio.NewWriter(w)}
}

func (f *FlushWriter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *FlushWriter) Flush() error {
	return f.w.Flush()
}
