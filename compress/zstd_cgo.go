//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

const gozstdLevel = 3

type gozstdWriter struct {
	*gozstd.Writer
}

func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return &gozstdWriter{Writer: gozstd.NewWriterLevel(w, gozstdLevel)}, nil
}

// Close finalizes the frame and releases the C-side encoder.
func (z *gozstdWriter) Close() error {
	if z.Writer == nil {
		return nil
	}
	err := z.Writer.Close()
	z.Writer.Release()
	z.Writer = nil

	return err
}

type gozstdReader struct {
	*gozstd.Reader
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	return &gozstdReader{Reader: gozstd.NewReader(r)}, nil
}

func (z *gozstdReader) Close() error {
	if z.Reader != nil {
		z.Reader.Release()
		z.Reader = nil
	}

	return nil
}
