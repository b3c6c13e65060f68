// Package codectest provides codecs for tests and examples.
//
// Binary is a compact self-describing record stream that stands in for a
// real statistical format: it honours the file's byte order, rejects values
// that do not fit the declared storage type or width, and reads back
// everything it writes. Recorder captures the calls an Encoder receives.
package codectest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/arloliu/statfile/codec"
	"github.com/arloliu/statfile/endian"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/internal/pool"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/table"
)

const magic = "STF1"

const (
	tagHeader   byte = 'H'
	tagLabels   byte = 'L'
	tagVariable byte = 'V'
	tagRow      byte = 'R'
	tagFinish   byte = 'F'
)

// ErrWidthOverflow is reported when a string value is wider than its column's storage width.
var ErrWidthOverflow = errors.New("value exceeds storage width")

// ErrBadStream is reported when the input is not a Binary stream.
var ErrBadStream = errors.New("not a codectest stream")

// Binary returns a codec writing the codectest stream for ext.
func Binary(ext format.Extension) codec.Codec {
	return codec.Codec{
		Ext:        ext,
		NewEncoder: func() codec.Encoder { return &BinaryEncoder{} },
		NewDecoder: func() codec.Decoder { return &BinaryDecoder{} },
	}
}

// RegisterAll registers the Binary codec for every supported extension in r.
func RegisterAll(r *codec.Registry) {
	for _, ext := range format.Extensions() {
		if err := r.Register(Binary(ext)); err != nil {
			panic(err)
		}
	}
}

// BinaryEncoder writes the codectest stream.
type BinaryEncoder struct {
	w      *bufio.Writer
	engine endian.EndianEngine
	policy format.Policy
	vars   []codec.Variable
	buf    *pool.ByteBuffer
}

var _ codec.Encoder = (*BinaryEncoder)(nil)

func (e *BinaryEncoder) Begin(w io.Writer, file table.FileMeta) error {
	policy, ok := format.Lookup(file.Ext)
	if !ok {
		return fmt.Errorf("unknown extension %q", file.Ext)
	}
	e.policy = policy
	e.w = bufio.NewWriter(w)
	order := file.Endianness
	if order == 0 {
		order = endian.Host()
	}
	e.engine = order.Engine()

	tag := byte('L')
	if order == endian.Big {
		tag = 'B'
	}
	e.start()
	e.buf.B = append(e.buf.B, magic...)
	e.buf.B = append(e.buf.B, tag, tagHeader)
	e.str(string(policy.Ext))
	e.u32(uint32(file.Version))
	e.str(file.FileLabel)
	e.str(file.TableName)
	e.u32(uint32(len(file.Notes)))
	for _, n := range file.Notes {
		e.str(n)
	}
	e.u32(uint32(file.RowCount))
	e.u32(uint32(file.ColumnCount))
	e.i64(unixNano(file.CreationTime))
	e.i64(unixNano(file.ModifiedTime))
	e.str(file.Encoding)
	e.flag(file.Is64Bit)
	e.buf.B = append(e.buf.B, byte(file.Compression))

	return e.flush()
}

func (e *BinaryEncoder) DefineValueLabels(name string, dict *labels.Dict) error {
	e.start(tagLabels)
	e.str(name)
	codes := dict.Codes()
	e.u32(uint32(len(codes)))
	for _, c := range codes {
		label, _ := dict.Get(c)
		e.flag(c.IsChar())
		e.u32(uint32(c.Int()))
		e.str(label)
	}

	return e.flush()
}

func (e *BinaryEncoder) DefineVariable(v codec.Variable) error {
	m := v.Meta
	if m.Type == format.TypeString && m.StorageWidth > e.policy.MaxStringWidth {
		return fmt.Errorf("%w: column %q width %d, %s allows %d",
			ErrWidthOverflow, v.Name, m.StorageWidth, e.policy.Ext, e.policy.MaxStringWidth)
	}
	e.vars = append(e.vars, v)

	e.start(tagVariable)
	e.str(v.Name)
	e.buf.B = append(e.buf.B, byte(m.Type))
	e.str(m.Label)
	e.str(m.Format)
	e.str(m.ValueLabel)
	e.u32(uint32(m.StorageWidth))
	e.u32(uint32(m.DisplayWidth))
	e.buf.B = append(e.buf.B, byte(m.Measure), byte(m.Alignment))

	return e.flush()
}

func (e *BinaryEncoder) WriteRow(row []any) error {
	if len(row) != len(e.vars) {
		return fmt.Errorf("row has %d values, %d variables defined", len(row), len(e.vars))
	}

	e.start(tagRow)
	for i, v := range row {
		if v == nil {
			e.flag(false)
			continue
		}
		e.flag(true)
		if err := e.value(e.vars[i], v); err != nil {
			return err
		}
	}

	return e.flush()
}

func (e *BinaryEncoder) value(v codec.Variable, x any) error {
	switch v.Meta.Type {
	case format.TypeInt8:
		n, ok := x.(int8)
		if !ok {
			return typeError(v, x)
		}
		e.buf.B = append(e.buf.B, byte(n))
	case format.TypeInt16:
		n, ok := x.(int16)
		if !ok {
			return typeError(v, x)
		}
		e.buf.B = e.engine.AppendUint16(e.buf.B, uint16(n))
	case format.TypeInt32:
		n, ok := x.(int32)
		if !ok {
			return typeError(v, x)
		}
		e.u32(uint32(n))
	case format.TypeFloat:
		f, ok := x.(float32)
		if !ok {
			return typeError(v, x)
		}
		e.u32(math.Float32bits(f))
	case format.TypeDouble:
		f, ok := x.(float64)
		if !ok {
			return typeError(v, x)
		}
		e.buf.B = e.engine.AppendUint64(e.buf.B, math.Float64bits(f))
	case format.TypeString:
		s, ok := x.(string)
		if !ok {
			return typeError(v, x)
		}
		if v.Meta.StorageWidth > 0 && len(s) > v.Meta.StorageWidth {
			return fmt.Errorf("%w: column %q value of %d bytes, width %d",
				ErrWidthOverflow, v.Name, len(s), v.Meta.StorageWidth)
		}
		e.str(s)
	default:
		return fmt.Errorf("column %q: unknown storage type %s", v.Name, v.Meta.Type)
	}

	return nil
}

func typeError(v codec.Variable, x any) error {
	return fmt.Errorf("column %q: %T is not %s", v.Name, x, v.Meta.Type)
}

func (e *BinaryEncoder) Finish() error {
	if e.w == nil {
		return errors.New("finish before begin")
	}
	e.start(tagFinish)
	err := e.flush()
	pool.PutRecordBuffer(e.buf)
	e.buf = nil
	if err != nil {
		return err
	}

	return e.w.Flush()
}

func (e *BinaryEncoder) flush() error {
	if e.w == nil {
		return errors.New("encoder not started")
	}
	_, err := e.buf.WriteTo(e.w)

	return err
}

// start begins a record in the pooled record buffer.
func (e *BinaryEncoder) start(tags ...byte) {
	if e.buf == nil {
		e.buf = pool.GetRecordBuffer()
	}
	e.buf.Reset()
	e.buf.B = append(e.buf.B, tags...)
}

func (e *BinaryEncoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf.B = append(e.buf.B, s...)
}

func (e *BinaryEncoder) u32(v uint32) {
	e.buf.B = e.engine.AppendUint32(e.buf.B, v)
}

func (e *BinaryEncoder) i64(v int64) {
	e.buf.B = e.engine.AppendUint64(e.buf.B, uint64(v))
}

func (e *BinaryEncoder) flag(b bool) {
	if b {
		e.buf.B = append(e.buf.B, 1)
	} else {
		e.buf.B = append(e.buf.B, 0)
	}
}

// BinaryDecoder reads the codectest stream.
type BinaryDecoder struct {
	r      *bufio.Reader
	engine endian.EndianEngine
	err    error
}

var _ codec.Decoder = (*BinaryDecoder)(nil)

type columnBuilder struct {
	typ     format.StorageType
	ints    []int32
	floats  []float64
	strs    []string
	missing []bool
}

func (d *BinaryDecoder) Decode(r io.Reader) (table.Parts, error) {
	d.r = bufio.NewReader(r)

	head := d.read(len(magic) + 2)
	if d.err != nil || string(head[:len(magic)]) != magic || head[len(magic)+1] != tagHeader {
		return table.Parts{}, ErrBadStream
	}
	order := endian.Little
	if head[len(magic)] == 'B' {
		order = endian.Big
	}
	d.engine = order.Engine()

	var p table.Parts
	p.File = d.header()
	p.File.Endianness = order
	p.Labels = labels.NewRegistry()

	var cols []*columnBuilder
	for d.err == nil {
		switch tag := d.u8(); tag {
		case tagLabels:
			name, dict := d.labels()
			if d.err == nil {
				if err := p.Labels.Assign(name, dict); err != nil {
					return table.Parts{}, err
				}
			}
		case tagVariable:
			name, meta := d.variable()
			p.Names = append(p.Names, name)
			p.Meta = append(p.Meta, meta)
			cols = append(cols, &columnBuilder{typ: meta.Type})
		case tagRow:
			for _, c := range cols {
				d.cell(c)
			}
		case tagFinish:
			p.Columns = make([]table.Column, len(cols))
			for i, c := range cols {
				p.Columns[i] = c.build()
			}

			return p, nil
		default:
			if d.err == nil {
				d.err = fmt.Errorf("%w: unknown record tag %q", ErrBadStream, tag)
			}
		}
	}

	if errors.Is(d.err, io.EOF) || errors.Is(d.err, io.ErrUnexpectedEOF) {
		return table.Parts{}, fmt.Errorf("%w: truncated", ErrBadStream)
	}

	return table.Parts{}, d.err
}

func (d *BinaryDecoder) header() table.FileMeta {
	var fm table.FileMeta
	fm.Ext = format.Extension(d.str())
	fm.Version = int(d.u32())
	fm.FileLabel = d.str()
	fm.TableName = d.str()
	if n := d.u32(); d.err == nil {
		for range n {
			fm.Notes = append(fm.Notes, d.str())
		}
	}
	fm.RowCount = int(d.u32())
	fm.ColumnCount = int(d.u32())
	fm.CreationTime = fromUnixNano(d.i64())
	fm.ModifiedTime = fromUnixNano(d.i64())
	fm.Encoding = d.str()
	fm.Is64Bit = d.u8() == 1
	fm.Compression = format.CompressionType(d.u8())

	return fm
}

func (d *BinaryDecoder) labels() (string, *labels.Dict) {
	name := d.str()
	n := d.u32()
	dict := labels.NewDict()
	for i := uint32(0); i < n && d.err == nil; i++ {
		isChar := d.u8() == 1
		v := int32(d.u32())
		label := d.str()
		if isChar {
			dict.Set(labels.Char(v), label)
		} else {
			dict.Set(labels.Int(v), label)
		}
	}

	return name, dict
}

func (d *BinaryDecoder) variable() (string, table.ColumnMeta) {
	name := d.str()
	var m table.ColumnMeta
	m.Type = format.StorageType(d.u8())
	m.Label = d.str()
	m.Format = d.str()
	m.ValueLabel = d.str()
	m.StorageWidth = int(d.u32())
	m.DisplayWidth = int(d.u32())
	m.Measure = format.Measure(d.u8())
	m.Alignment = format.Alignment(d.u8())

	return name, m
}

func (d *BinaryDecoder) cell(c *columnBuilder) {
	present := d.u8() == 1
	c.missing = append(c.missing, !present)

	switch c.typ {
	case format.TypeInt8:
		var v int32
		if present {
			v = int32(int8(d.u8()))
		}
		c.ints = append(c.ints, v)
	case format.TypeInt16:
		var v int32
		if present {
			v = int32(int16(d.engine.Uint16(d.read(2))))
		}
		c.ints = append(c.ints, v)
	case format.TypeInt32:
		var v int32
		if present {
			v = int32(d.u32())
		}
		c.ints = append(c.ints, v)
	case format.TypeFloat:
		var v float64
		if present {
			v = float64(math.Float32frombits(d.u32()))
		}
		c.floats = append(c.floats, v)
	case format.TypeDouble:
		var v float64
		if present {
			v = math.Float64frombits(uint64(d.i64()))
		}
		c.floats = append(c.floats, v)
	case format.TypeString:
		var v string
		if present {
			v = d.str()
		}
		c.strs = append(c.strs, v)
	default:
		if d.err == nil {
			d.err = fmt.Errorf("%w: unknown storage type %d", ErrBadStream, c.typ)
		}
	}
}

func (c *columnBuilder) build() table.Column {
	switch c.typ { //nolint: exhaustive
	case format.TypeInt8:
		return table.NewVector(convert[int8](c.ints), c.missing)
	case format.TypeInt16:
		return table.NewVector(convert[int16](c.ints), c.missing)
	case format.TypeInt32:
		return table.NewVector(c.ints, c.missing)
	case format.TypeFloat:
		return table.NewVector(toFloat32(c.floats), c.missing)
	case format.TypeDouble:
		return table.NewVector(c.floats, c.missing)
	default:
		return table.NewVector(c.strs, c.missing)
	}
}

func convert[T int8 | int16](in []int32) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}

	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}

	return out
}

// unixNano encodes the zero Time as 0.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}

	return time.Unix(0, n).UTC()
}

func (d *BinaryDecoder) read(n int) []byte {
	buf := make([]byte, n)
	if d.err != nil {
		return buf
	}
	_, d.err = io.ReadFull(d.r, buf)

	return buf
}

func (d *BinaryDecoder) u8() byte {
	return d.read(1)[0]
}

func (d *BinaryDecoder) u32() uint32 {
	return d.engine.Uint32(d.read(4))
}

func (d *BinaryDecoder) i64() int64 {
	return int64(d.engine.Uint64(d.read(8)))
}

// maxString bounds string lengths so a corrupt stream cannot force a huge allocation.
const maxString = 1 << 24

func (d *BinaryDecoder) str() string {
	n := d.u32()
	if d.err != nil {
		return ""
	}
	if n > maxString {
		d.err = fmt.Errorf("%w: string of %d bytes", ErrBadStream, n)
		return ""
	}

	return string(d.read(int(n)))
}
