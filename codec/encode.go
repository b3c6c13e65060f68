package codec

import (
	"fmt"
	"io"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/table"
)

// Encode writes t to w through enc.
//
// Value-label sets are defined in registration order, then variables in
// column order, then rows. Any failure is wrapped with errs.ErrCodec and
// aborts the write; what was already written to w is left as is.
func Encode(enc Encoder, w io.Writer, t *table.Table) error {
	if enc == nil {
		return fmt.Errorf("%w: nil encoder", errs.ErrInvalidOption)
	}
	if t == nil {
		return fmt.Errorf("%w: nil table", errs.ErrUnsupportedSource)
	}

	if err := enc.Begin(w, t.FileMeta()); err != nil {
		return errs.Codec("begin", err)
	}

	reg := t.Labels()
	for _, name := range reg.Names() {
		dict, _ := reg.Lookup(name)
		if err := enc.DefineValueLabels(name, dict); err != nil {
			return errs.Codec(fmt.Sprintf("value labels %q", name), err)
		}
	}

	names := t.ColumnNames()
	for i, name := range names {
		v := Variable{Index: i, Name: name, Meta: t.ColumnMeta(i)}
		if err := enc.DefineVariable(v); err != nil {
			return errs.Codec(fmt.Sprintf("variable %q", name), err)
		}
	}

	row := make([]any, len(names))
	for r := range t.NumRows() {
		for i := range row {
			col := t.Data(i)
			if col.IsMissing(r) {
				row[i] = nil
			} else {
				row[i] = col.Value(r)
			}
		}
		if err := enc.WriteRow(row); err != nil {
			return errs.Codec(fmt.Sprintf("row %d", r), err)
		}
	}

	return errs.Codec("finish", enc.Finish())
}

// Decode reads r through dec and assembles the table.
func Decode(dec Decoder, r io.Reader) (*table.Table, error) {
	if dec == nil {
		return nil, fmt.Errorf("%w: nil decoder", errs.ErrInvalidOption)
	}

	parts, err := dec.Decode(r)
	if err != nil {
		return nil, errs.Codec("decode", err)
	}

	return table.Assemble(parts)
}
