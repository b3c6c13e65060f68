package compress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/arloliu/statfile/format"
)

// CompressionStats reports what a Writer did.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the number of bytes written into the compressor
	OriginalSize int64

	// CompressedSize is the number of bytes the compressor emitted
	CompressedSize int64

	// CompressionTimeNs is the time between opening and closing the writer
	CompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// Writer is a compressing io.WriteCloser that keeps byte counts.
//
// Close flushes the compressed stream but leaves the underlying writer open.
type Writer struct {
	algo   format.CompressionType
	enc    io.WriteCloser
	out    *countingWriter
	in     int64
	start  time.Time
	elapse time.Duration
	closed bool
}

var _ io.WriteCloser = (*Writer)(nil)

// NewWriter creates a streaming compressor writing to w.
//
// Parameters:
//   - compressionType: None, Zstd, S2, LZ4 or Gzip
//   - w: destination of the compressed stream
//
// Returns:
//   - *Writer: compressor; must be closed to flush the stream
//   - error: invalid compression type error
func NewWriter(compressionType format.CompressionType, w io.Writer) (*Writer, error) {
	out := &countingWriter{w: w}

	var (
		enc io.WriteCloser
		err error
	)
	switch compressionType {
	case format.CompressionNone:
		enc = nopWriteCloser{out}
	case format.CompressionZstd:
		enc, err = newZstdWriter(out)
	case format.CompressionS2:
		enc = newS2Writer(out)
	case format.CompressionLZ4:
		enc = newLZ4Writer(out)
	case format.CompressionGzip:
		enc, err = newGzipWriter(out)
	default:
		return nil, fmt.Errorf("invalid output compression: %s", compressionType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s writer: %w", compressionType, err)
	}

	return &Writer{algo: compressionType, enc: enc, out: out, start: time.Now()}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.enc.Write(p)
	w.in += int64(n)

	return n, err
}

// Close flushes and finalizes the compressed stream. It is safe to call twice.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.enc.Close()
	w.elapse = time.Since(w.start)

	return err
}

// Stats returns the byte counts so far. Compressed sizes are final only after Close.
func (w *Writer) Stats() CompressionStats {
	elapsed := w.elapse
	if !w.closed {
		elapsed = time.Since(w.start)
	}

	return CompressionStats{
		Algorithm:         w.algo,
		OriginalSize:      w.in,
		CompressedSize:    w.out.n,
		CompressionTimeNs: elapsed.Nanoseconds(),
	}
}

// NewReader creates a streaming decompressor reading from r.
//
// Closing the returned reader releases decoder resources; r is left open.
func NewReader(compressionType format.CompressionType, r io.Reader) (io.ReadCloser, error) {
	var (
		dec io.ReadCloser
		err error
	)
	switch compressionType {
	case format.CompressionNone:
		dec = io.NopCloser(r)
	case format.CompressionZstd:
		dec, err = newZstdReader(r)
	case format.CompressionS2:
		dec = newS2Reader(r)
	case format.CompressionLZ4:
		dec = newLZ4Reader(r)
	case format.CompressionGzip:
		dec, err = newGzipReader(r)
	default:
		return nil, fmt.Errorf("invalid input compression: %s", compressionType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s reader: %w", compressionType, err)
	}

	return dec, nil
}

var suffixes = map[string]format.CompressionType{
	".zst":  format.CompressionZstd,
	".zstd": format.CompressionZstd,
	".sz":   format.CompressionS2,
	".s2":   format.CompressionS2,
	".lz4":  format.CompressionLZ4,
	".gz":   format.CompressionGzip,
}

// FromSuffix returns the compression selected by the last suffix of path and
// the path without that suffix. Paths without a compression suffix yield
// CompressionNone and the path unchanged.
func FromSuffix(path string) (format.CompressionType, string) {
	ext := filepath.Ext(path)
	if ct, ok := suffixes[strings.ToLower(ext)]; ok {
		return ct, strings.TrimSuffix(path, ext)
	}

	return format.CompressionNone, path
}

// Suffix returns the canonical path suffix for compressionType, or "" for none.
func Suffix(compressionType format.CompressionType) string {
	switch compressionType { //nolint: exhaustive
	case format.CompressionZstd:
		return ".zst"
	case format.CompressionS2:
		return ".sz"
	case format.CompressionLZ4:
		return ".lz4"
	case format.CompressionGzip:
		return ".gz"
	default:
		return ""
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
