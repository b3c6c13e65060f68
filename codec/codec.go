// Package codec is the boundary between the table builder and the
// format-specific binary encoders and decoders.
//
// A Codec pairs an Encoder and a Decoder factory for one extension. Codecs
// register themselves with a Registry, usually from an init function:
//
//	func init() {
//	    codec.Register(codec.Codec{
//	        Ext:        format.ExtDta,
//	        NewEncoder: newStataEncoder,
//	        NewDecoder: newStataDecoder,
//	    })
//	}
//
// Encode drives an Encoder through one fully resolved table: Begin, every
// value-label set, every variable, every row, Finish. Encoders only copy
// what the table holds; all policy decisions were made by the builder.
package codec

import (
	"io"

	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/table"
)

// Variable describes one column handed to an Encoder.
type Variable struct {
	Index int
	Name  string
	Meta  table.ColumnMeta
}

// Encoder writes one file. Calls arrive in the order Begin,
// DefineValueLabels (zero or more), DefineVariable (once per column),
// WriteRow (once per row), Finish.
type Encoder interface {
	// Begin starts a file on w.
	Begin(w io.Writer, file table.FileMeta) error
	// DefineValueLabels declares a named value-label set.
	DefineValueLabels(name string, dict *labels.Dict) error
	// DefineVariable declares the next column.
	DefineVariable(v Variable) error
	// WriteRow writes one row. row[i] holds the canonical Go value of
	// column i (int8, int16, int32, float32, float64 or string), or nil
	// when the element is missing.
	WriteRow(row []any) error
	// Finish completes the file. The Encoder must not be used afterwards.
	Finish() error
}

// Decoder reads one file into the parts of a table.
type Decoder interface {
	Decode(r io.Reader) (table.Parts, error)
}

// Codec is the entry point of one file format.
type Codec struct {
	Ext        format.Extension
	NewEncoder func() Encoder
	// NewDecoder may be nil for write-only formats.
	NewDecoder func() Decoder
}

// CanDecode reports whether the codec reads files.
func (c Codec) CanDecode() bool {
	return c.NewDecoder != nil
}
