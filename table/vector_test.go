package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/statfile/format"
)

func TestNewVector(t *testing.T) {
	values := []int16{1, 2, 3}
	v := NewVector(values, []bool{false, true})
	values[0] = 9

	require.Equal(t, format.TypeInt16, v.Type())
	require.Equal(t, 3, v.Len())
	require.Equal(t, 1, v.MissingCount())
	require.True(t, v.IsMissing(1))
	require.True(t, v.IsNull(1))
	require.False(t, v.IsMissing(2))
	require.Equal(t, []int16{1, 2, 3}, v.Values())
	require.Equal(t, []bool{false, true, false}, v.Missing())
	require.Equal(t, int16(1), v.Value(0))
}

func TestNewVector_NoMissing(t *testing.T) {
	v := NewVector([]string{"a"}, []bool{false})

	require.Nil(t, v.Missing())
	require.Equal(t, 0, v.MissingCount())
	require.Equal(t, "string", v.ElemType().String())
}

func TestVector_StorageTypes(t *testing.T) {
	require.Equal(t, format.TypeInt8, NewVector([]int8{}, nil).Type())
	require.Equal(t, format.TypeInt32, NewVector([]int32{}, nil).Type())
	require.Equal(t, format.TypeFloat, NewVector([]float32{}, nil).Type())
	require.Equal(t, format.TypeDouble, NewVector([]float64{}, nil).Type())
	require.Equal(t, format.TypeString, NewVector([]string{}, nil).Type())
}

func TestVector_CloneIsIndependent(t *testing.T) {
	v := NewVector([]float64{1, 2}, []bool{true, false})
	c := v.clone().(*Vector[float64])
	c.values[0] = 5
	c.missing[0] = false

	require.Equal(t, []float64{1, 2}, v.Values())
	require.True(t, v.IsMissing(0))
}

func TestMaxByteLen(t *testing.T) {
	require.Equal(t, 3, maxByteLen(NewVector([]string{"ab", "abc", "abcdef"}, []bool{false, false, true})))
	require.Equal(t, 0, maxByteLen(NewVector([]float64{1}, nil)))
}

func TestDisplayWidth(t *testing.T) {
	require.Equal(t, 9, displayWidth(0, 0))
	require.Equal(t, 9, displayWidth(8, 0))
	require.Equal(t, 20, displayWidth(20, 4))
	require.Equal(t, 15, displayWidth(2, 15))
}
