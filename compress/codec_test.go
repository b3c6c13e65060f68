package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/statfile/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
	format.CompressionGzip,
}

func samplePayload() []byte {
	return []byte(strings.Repeat("id,income,region\n1,1200.5,north\n2,980,south\n", 200))
}

func TestRoundTrip(t *testing.T) {
	payload := samplePayload()

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(ct, &buf)
			require.NoError(t, err)

			n, err := w.Write(payload[:100])
			require.NoError(t, err)
			require.Equal(t, 100, n)
			_, err = w.Write(payload[100:])
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())

			stats := w.Stats()
			require.Equal(t, ct, stats.Algorithm)
			require.Equal(t, int64(len(payload)), stats.OriginalSize)
			require.Equal(t, int64(buf.Len()), stats.CompressedSize)
			if ct != format.CompressionNone {
				require.Less(t, stats.CompressionRatio(), 1.0)
				require.Greater(t, stats.SpaceSavings(), 0.0)
			}

			r, err := NewReader(ct, bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, payload, got)
		})
	}
}

func TestWriter_ReusesPooledEncoder(t *testing.T) {
	for i := range 3 {
		var buf bytes.Buffer
		w, err := NewWriter(format.CompressionZstd, &buf)
		require.NoError(t, err)
		_, err = w.Write([]byte{byte(i), 1, 2, 3})
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := NewReader(format.CompressionZstd, &buf)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i), 1, 2, 3}, got)
	}
}

func TestEmptyStream(t *testing.T) {
	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(ct, &buf)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.Equal(t, 0.0, w.Stats().CompressionRatio())

			r, err := NewReader(ct, &buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestInvalidType(t *testing.T) {
	_, err := NewWriter(format.CompressionType(0), io.Discard)
	require.Error(t, err)

	_, err = NewReader(format.CompressionType(99), bytes.NewReader(nil))
	require.Error(t, err)
}

func TestCorruptInput(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 16)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionGzip, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			r, err := NewReader(ct, bytes.NewReader(garbage))
			if err != nil {
				return
			}
			_, err = io.ReadAll(r)
			require.Error(t, err)
		})
	}
}

func TestFromSuffix(t *testing.T) {
	tests := []struct {
		path     string
		wantType format.CompressionType
		wantPath string
	}{
		{"survey.dta", format.CompressionNone, "survey.dta"},
		{"survey.dta.zst", format.CompressionZstd, "survey.dta"},
		{"survey.dta.ZSTD", format.CompressionZstd, "survey.dta"},
		{"out/survey.sav.sz", format.CompressionS2, "out/survey.sav"},
		{"survey.xpt.s2", format.CompressionS2, "survey.xpt"},
		{"survey.por.lz4", format.CompressionLZ4, "survey.por"},
		{"survey.sas7bdat.gz", format.CompressionGzip, "survey.sas7bdat"},
		{"archive.tar", format.CompressionNone, "archive.tar"},
		{"noext", format.CompressionNone, "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ct, rest := FromSuffix(tt.path)
			require.Equal(t, tt.wantType, ct)
			require.Equal(t, tt.wantPath, rest)
		})
	}
}

func TestSuffix(t *testing.T) {
	for _, ct := range allTypes {
		ct2, rest := FromSuffix("x.dta" + Suffix(ct))
		require.Equal(t, ct, ct2)
		require.Equal(t, "x.dta", rest)
	}
}
