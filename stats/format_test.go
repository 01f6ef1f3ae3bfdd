package stats

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatResult(t *testing.T) {
	tbl := NewTable()
	tbl.LookupOrCreate([]byte("Tokyo")).Add(0)
	tbl.LookupOrCreate([]byte("Paris")).Add(123)
	tbl.LookupOrCreate([]byte("Paris")).Add(-45)

	require.Equal(t, "{Paris=-4.5/3.9/12.3, Tokyo=0.0/0.0/0.0}", FormatResult(tbl))
}

func TestFormatResult_Empty(t *testing.T) {
	require.Equal(t, "{}", FormatResult(NewTable()))
}

func TestFormatResult_NoNegativeZero(t *testing.T) {
	tbl := NewTable()
	agg := tbl.LookupOrCreate([]byte("Oslo"))
	agg.Add(-1)
	agg.Add(0)

	require.Equal(t, "{Oslo=-0.1/0.0/0.0}", FormatResult(tbl))
}

func TestWriteResult(t *testing.T) {
	tbl := NewTable()
	tbl.LookupOrCreate([]byte("Paris")).Add(123)

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, tbl))
	require.Equal(t, "{Paris=12.3/12.3/12.3}\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteResult_Error(t *testing.T) {
	err := WriteResult(failingWriter{}, NewTable())
	require.ErrorContains(t, err, "disk full")
}
