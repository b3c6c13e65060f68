package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnError(t *testing.T) {
	err := NewColumnError(2, "income", ErrUnsupportedType)

	require.ErrorIs(t, err, ErrUnsupportedType)
	require.Equal(t, `column 2 ("income"): unsupported column element type`, err.Error())

	var colErr *ColumnError
	require.ErrorAs(t, error(err), &colErr)
	require.Equal(t, "income", colErr.Name)
}

func TestCodec(t *testing.T) {
	require.NoError(t, Codec("finish", nil))

	cause := errors.New("value out of range")
	err := Codec("write row", cause)

	require.ErrorIs(t, err, ErrCodec)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "write row")
}
