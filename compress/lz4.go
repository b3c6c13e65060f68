package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

func newLZ4Writer(w io.Writer) io.WriteCloser {
	zw := lz4.NewWriter(w)
	// Apply cannot fail for these options.
	_ = zw.Apply(lz4.ChecksumOption(true), lz4.ConcurrencyOption(1))

	return zw
}

func newLZ4Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(lz4.NewReader(r))
}
