package stats

import (
	"fmt"
	"io"

	"github.com/arloliu/onebrc/fixedpoint"
)

// AppendResult appends the result line for pairs to dst:
//
//	{key1=min/mean/max, key2=min/mean/max}
//
// Each statistic has exactly one decimal. pairs must already be sorted.
func AppendResult(dst []byte, pairs []Pair) []byte {
	dst = append(dst, '{')
	for i, p := range pairs {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = AppendPair(dst, p)
	}

	return append(dst, '}')
}

// AppendPair appends "key=min/mean/max" to dst.
func AppendPair(dst []byte, p Pair) []byte {
	dst = append(dst, p.Key...)
	dst = append(dst, '=')
	dst = fixedpoint.Append(dst, p.Aggregate.MinScaled)
	dst = append(dst, '/')
	dst = fixedpoint.Append(dst, p.Aggregate.MeanScaled())
	dst = append(dst, '/')

	return fixedpoint.Append(dst, p.Aggregate.MaxScaled)
}

// FormatResult returns the result line for the table, without a trailing newline.
func FormatResult(t *Table) string {
	return string(AppendResult(nil, t.SortedPairs()))
}

// WriteResult writes the result line for the table to w, followed by a newline.
func WriteResult(w io.Writer, t *Table) error {
	line := AppendResult(make([]byte, 0, 64*t.Len()+3), t.SortedPairs())
	line = append(line, '\n')

	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
