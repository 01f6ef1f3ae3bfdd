package partition

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/onebrc/errs"
)

const example = "Paris;12.3\nParis;-4.5\nTokyo;0.0\n"

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		length  int64
		workers int
		want    []Range
	}{
		{"single worker", 100, 1, []Range{{0, 100}}},
		{"even split", 100, 4, []Range{{0, 25}, {25, 50}, {50, 75}, {75, 100}}},
		{"remainder goes to last", 10, 3, []Range{{0, 3}, {3, 6}, {6, 10}}},
		{"more workers than bytes", 3, 8, []Range{{0, 1}, {1, 2}, {2, 3}}},
		{"empty input", 0, 4, []Range{{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.length, tt.workers)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, Verify(got, tt.length))
		})
	}
}

func TestSplit_Invalid(t *testing.T) {
	_, err := Split(100, 0)
	require.ErrorIs(t, err, errs.ErrInvalidWorkerCount)

	_, err = Split(-1, 1)
	require.Error(t, err)
}

func TestNextBoundary(t *testing.T) {
	r := strings.NewReader(example)
	length := int64(len(example))

	tests := []struct {
		name string
		off  int64
		want int64
	}{
		{"mid first line", 3, 11},
		{"on terminator", 10, 11},
		{"at line start claims that line", 11, 22},
		{"mid last line", 25, length},
		{"at end", length, length},
		{"past end", length + 5, length},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBoundary(r, tt.off, length, 4)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNextBoundary_GrowsWindow(t *testing.T) {
	long := strings.Repeat("x", 5000) + ";1.0\nb;2.0\n"
	r := strings.NewReader(long)

	got, err := NextBoundary(r, 1, int64(len(long)), 1)
	require.NoError(t, err)
	require.Equal(t, int64(5005), got)
}

func TestNextBoundary_EndOfInputIsTerminator(t *testing.T) {
	in := "a;1.0\nb;2.0"
	got, err := NextBoundary(strings.NewReader(in), 7, int64(len(in)), 2)
	require.NoError(t, err)
	require.Equal(t, int64(len(in)), got)
}

func TestNextBoundary_ShortInput(t *testing.T) {
	// The reader holds fewer bytes than the stated length.
	got, err := NextBoundary(strings.NewReader("abc"), 1, 100, 8)
	require.NoError(t, err)
	require.Equal(t, int64(100), got)
}

func TestNextBoundary_Monotone(t *testing.T) {
	r := strings.NewReader(example)
	length := int64(len(example))

	prev := int64(0)
	for off := int64(0); off <= length; off++ {
		got, err := NextBoundary(r, off, length, 3)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev)
		require.Greater(t, got, off-1)
		if got < length {
			require.Equal(t, byte('\n'), example[got-1], "boundary must follow a terminator")
		}
		prev = got
	}
}

type failingReaderAt struct{ err error }

func (f failingReaderAt) ReadAt([]byte, int64) (int, error) { return 0, f.err }

func TestNextBoundary_Errors(t *testing.T) {
	_, err := NextBoundary(strings.NewReader(example), 0, 10, 0)
	require.ErrorIs(t, err, errs.ErrInvalidWindow)

	boom := errors.New("boom")
	_, err = NextBoundary(failingReaderAt{boom}, 0, 10, 4)
	require.ErrorIs(t, err, boom)

	_, err = Align(failingReaderAt{boom}, Range{Start: 3, End: 6}, 10, 4)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "align start of [3, 6)")
}

func TestAlign_FirstRangeKeepsStart(t *testing.T) {
	r := strings.NewReader(example)
	got, err := Align(r, Range{Start: 0, End: 5}, int64(len(example)), DefaultLookahead)
	require.NoError(t, err)
	require.Equal(t, Range{Start: 0, End: 11}, got)
}

func TestAlign_SplitInsideLine(t *testing.T) {
	r := strings.NewReader(example)
	length := int64(len(example))

	left, err := Align(r, Range{Start: 0, End: 15}, length, DefaultLookahead)
	require.NoError(t, err)
	right, err := Align(r, Range{Start: 15, End: length}, length, DefaultLookahead)
	require.NoError(t, err)

	require.Equal(t, Range{Start: 0, End: 22}, left)
	require.Equal(t, Range{Start: 22, End: length}, right)
	require.NoError(t, Verify([]Range{right, left}, length))
}

// alignAll splits and aligns the input the way the coordinator does.
func alignAll(t *testing.T, data string, workers, window int) []Range {
	t.Helper()
	r := strings.NewReader(data)
	length := int64(len(data))

	candidates, err := Split(length, workers)
	require.NoError(t, err)

	aligned := make([]Range, len(candidates))
	for i, c := range candidates {
		aligned[i], err = Align(r, c, length, window)
		require.NoError(t, err)
	}

	return aligned
}

func TestAlign_EveryWorkerCount(t *testing.T) {
	inputs := map[string]string{
		"example":             example,
		"no final newline":    strings.TrimSuffix(example, "\n"),
		"long line":           "a;1.0\n" + strings.Repeat("k", 300) + ";2.0\nb;3.0\n",
		"blank lines":         "\n\na;1.0\n\nb;2.0\n\n",
		"single record":       "x;9.9\n",
		"single unterminated": "x;9.9",
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			length := int64(len(data))
			for workers := 1; workers <= len(data)+2; workers++ {
				for _, window := range []int{1, 7, DefaultLookahead} {
					aligned := alignAll(t, data, workers, window)
					require.NoError(t, Verify(aligned, length), "workers=%d window=%d", workers, window)

					// Every range holds whole lines and together they rebuild the input.
					var rebuilt bytes.Buffer
					for _, rng := range aligned {
						if rng.Start > 0 && rng.Start < length {
							require.Equal(t, byte('\n'), data[rng.Start-1])
						}
						if rng.End < length {
							require.Equal(t, byte('\n'), data[rng.End-1])
						}
						rebuilt.WriteString(data[rng.Start:rng.End])
					}
					require.Equal(t, data, rebuilt.String())
				}
			}
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		length int64
		ok     bool
	}{
		{"single", []Range{{0, 10}}, 10, true},
		{"unordered", []Range{{5, 10}, {0, 5}}, 10, true},
		{"empty ranges", []Range{{0, 5}, {5, 5}, {5, 5}, {5, 10}}, 10, true},
		{"empty input", []Range{{0, 0}}, 0, true},
		{"gap", []Range{{0, 4}, {5, 10}}, 10, false},
		{"overlap", []Range{{0, 6}, {5, 10}}, 10, false},
		{"short", []Range{{0, 5}, {5, 9}}, 10, false},
		{"late start", []Range{{1, 10}}, 10, false},
		{"inverted", []Range{{0, 5}, {5, 3}, {3, 10}}, 10, false},
		{"none", nil, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.ranges, tt.length)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrPartitionInvariant)
			}
		})
	}
}

func TestRange_String(t *testing.T) {
	require.Equal(t, "[3, 11)", Range{Start: 3, End: 11}.String())
	require.Equal(t, int64(8), Range{Start: 3, End: 11}.Len())
}
