//go:build !(cgo && gozstd)

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool pools zstd encoders; Reset points a warmed-up encoder at a new stream.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

type zstdWriter struct {
	*zstd.Encoder
}

func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	encoder.Reset(w)

	return &zstdWriter{Encoder: encoder}, nil
}

// Close finalizes the frame and returns the encoder to the pool.
func (z *zstdWriter) Close() error {
	if z.Encoder == nil {
		return nil
	}
	err := z.Encoder.Close()
	zstdEncoderPool.Put(z.Encoder)
	z.Encoder = nil

	return err
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	)
	if err != nil {
		return nil, err
	}

	return decoder.IOReadCloser(), nil
}
