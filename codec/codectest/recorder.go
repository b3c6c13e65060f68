package codectest

import (
	"io"
	"slices"

	"github.com/arloliu/statfile/codec"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/table"
)

// Recorder is an Encoder that remembers every call and writes nothing.
// Setting FailOn makes the named call fail with Err.
type Recorder struct {
	File      table.FileMeta
	Labels    map[string]*labels.Dict
	Variables []codec.Variable
	Rows      [][]any
	Calls     []string
	Finished  bool

	// FailOn names the call to fail: "begin", "labels", "variable", "row" or "finish".
	FailOn string
	Err    error
}

var _ codec.Encoder = (*Recorder)(nil)

func (r *Recorder) fail(call string) error {
	r.Calls = append(r.Calls, call)
	if r.FailOn == call {
		return r.Err
	}

	return nil
}

func (r *Recorder) Begin(_ io.Writer, file table.FileMeta) error {
	r.File = file
	r.Labels = make(map[string]*labels.Dict)

	return r.fail("begin")
}

func (r *Recorder) DefineValueLabels(name string, dict *labels.Dict) error {
	r.Labels[name] = dict.Clone()
	return r.fail("labels")
}

func (r *Recorder) DefineVariable(v codec.Variable) error {
	r.Variables = append(r.Variables, v)
	return r.fail("variable")
}

func (r *Recorder) WriteRow(row []any) error {
	r.Rows = append(r.Rows, slices.Clone(row))
	return r.fail("row")
}

func (r *Recorder) Finish() error {
	r.Finished = true
	return r.fail("finish")
}
