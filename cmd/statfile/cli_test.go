package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = `id,income,city
1,1200.5,Oslo
2,,Bergen
3,980,Oslo
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// columnLine returns the plan row for column name.
func columnLine(t *testing.T, out, name string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == name {
			return fields
		}
	}
	require.Failf(t, "column not in output", "%s\n%s", name, out)

	return nil
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)

	for _, want := range []string{"statfile version:", "Git commit:", "Build date:", "Go version:", "dta xpt sav por sas7bdat"} {
		assert.Contains(t, out, want)
	}
}

func TestPlan_CSV(t *testing.T) {
	path := writeFile(t, "survey.csv", surveyCSV)

	out, err := execute(t, "plan", path, "--ext", "xpt", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "extension:  xpt")
	assert.Contains(t, out, "version:    5")
	assert.Contains(t, out, "rows:       3")

	assert.Equal(t, []string{"income", "Double", "8", "9", "true"}, columnLine(t, out, "income"))
	assert.Equal(t, []string{"city", "String", "6", "9", "true"}, columnLine(t, out, "city"))
	assert.NotContains(t, out, "Value labels")
}

func TestPlan_Retarget(t *testing.T) {
	path := writeFile(t, "survey.csv", surveyCSV)

	out, err := execute(t, "plan", path, "--ext", "xpt", "--to", "sav", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "extension:  sav")
	assert.Equal(t, []string{"income", "Double", "0", "9", "true"}, columnLine(t, out, "income"))

	out, err = execute(t, "plan", path, "--ext", "xpt", "--to", "sav", "--update-width=false", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, []string{"income", "Double", "8", "9", "true"}, columnLine(t, out, "income"))
}

func TestPlan_ConfigFileAndEnv(t *testing.T) {
	input := writeFile(t, "survey.csv", surveyCSV)
	config := writeFile(t, "statfile.yaml", "ext: sav\nno_color: true\n")

	out, err := execute(t, "plan", input, "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "extension:  sav")

	t.Setenv("STATFILE_EXT", "por")
	out, err = execute(t, "plan", input, "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "extension:  por")

	out, err = execute(t, "plan", input, "--config", config, "--ext", "dta")
	require.NoError(t, err)
	assert.Contains(t, out, "extension:  dta")
}

func TestPlan_IPCDictionary(t *testing.T) {
	mem := memory.NewGoAllocator()
	regionType := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String}
	md := arrow.NewMetadata([]string{"file_label"}, []string{"Regions"})
	schema := arrow.NewSchema([]arrow.Field{{Name: "region", Type: regionType}}, &md)

	idx := array.NewInt16Builder(mem)
	defer idx.Release()
	idx.AppendValues([]int16{0, 1, 1}, nil)
	indices := idx.NewArray()
	defer indices.Release()

	vals := array.NewStringBuilder(mem)
	defer vals.Release()
	vals.AppendValues([]string{"north", "south"}, nil)
	dict := vals.NewArray()
	defer dict.Release()

	region := array.NewDictionaryArray(regionType, indices, dict)
	defer region.Release()
	rec := array.NewRecord(schema, []arrow.Array{region}, 3)
	defer rec.Release()

	path := filepath.Join(t.TempDir(), "regions.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	out, err := execute(t, "plan", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "label:      Regions")
	assert.Equal(t, []string{"region", "Int16", "0", "9", "region", "true"}, columnLine(t, out, "region"))
	assert.Contains(t, out, "Value labels")
	assert.Contains(t, out, "0 = north")

	out, err = execute(t, "plan", path, "--no-color", "--auto-labels=false")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "String", "5", "9", "true"}, columnLine(t, out, "region"))
}

func TestPlan_Parquet(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "score", Type: arrow.PrimitiveTypes.Float32},
		{Name: "grade", Type: arrow.PrimitiveTypes.Int8},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Float32Builder).AppendValues([]float32{1.5, 2.5}, nil)
	b.Field(1).(*array.Int8Builder).AppendValues([]int8{3, 4}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	path := filepath.Join(t.TempDir(), "scores.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pqarrow.WriteTable(tbl, f, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	require.NoError(t, f.Close())

	out, err := execute(t, "plan", path, "--ext", "sas7bdat", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "rows:       2")
	assert.Equal(t, []string{"score", "Float", "0", "9", "true"}, columnLine(t, out, "score"))
	assert.Equal(t, []string{"grade", "Int8", "0", "9", "true"}, columnLine(t, out, "grade"))
}

func TestPlan_Errors(t *testing.T) {
	input := writeFile(t, "survey.csv", surveyCSV)

	_, err := execute(t, "plan", input, "--ext", "csv")
	require.Error(t, err)

	_, err = execute(t, "plan", writeFile(t, "data.json", "{}"))
	require.ErrorContains(t, err, "unsupported input file type")

	_, err = execute(t, "plan", input, "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")

	_, err = execute(t, "plan")
	require.Error(t, err)
}
