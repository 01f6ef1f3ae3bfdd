// Package fixedpoint converts between ASCII decimals with exactly one
// fractional digit and int64 values scaled by ten.
//
// Measurements are accumulated as scaled integers so that summing millions of
// values never accumulates floating-point error. Conversion to float64 happens
// only when a result is reported.
//
// # Grammar
//
// Parse accepts exactly
//
//	-?[0-9]+\.[0-9]
//
// so "12.3", "-4.5" and "0.0" are valid, while "+1.0", "1.23", ".5", "5." and
// "1e3" are rejected with errs.ErrInvalidValue.
package fixedpoint

import (
	"fmt"
	"strconv"

	"github.com/arloliu/onebrc/errs"
)

// Scale is the factor between a real value and its scaled representation.
const Scale = 10

// maxDigits bounds the digit run so the accumulator cannot overflow int64.
const maxDigits = 18

// Parse converts b into its value multiplied by Scale.
//
// Digits are folded left to right into the accumulator and the decimal point
// is skipped; with exactly one fractional digit that concatenation is the ×10
// scaling. Parse does not allocate unless it returns an error, and never uses
// floating point.
//
// Parameters:
//   - b: ASCII bytes of the value, without surrounding whitespace or terminator
//
// Returns:
//   - int64: The scaled value
//   - error: errs.ErrInvalidValue wrapping the offending bytes
func Parse(b []byte) (int64, error) {
	var (
		acc    int64
		digits int
		dot    = -1
		i      int
	)

	neg := len(b) > 0 && b[0] == '-'
	if neg {
		i = 1
	}

	for ; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			acc = acc*10 + int64(c-'0')
			digits++
		case c == '.' && dot < 0:
			dot = i
		default:
			return 0, invalid(b)
		}
	}

	// One digit after the point, at least one before it.
	if dot < 0 || dot != len(b)-2 || digits < 2 || digits > maxDigits {
		return 0, invalid(b)
	}

	if neg {
		acc = -acc
	}

	return acc, nil
}

func invalid(b []byte) error {
	return fmt.Errorf("%w: %q", errs.ErrInvalidValue, b)
}

// Append appends the decimal text of the scaled value v to dst, e.g. -45 → "-4.5".
// Zero is always written as "0.0", never "-0.0".
func Append(dst []byte, v int64) []byte {
	var u uint64
	if v < 0 {
		dst = append(dst, '-')
		u = uint64(-(v + 1)) + 1 // math.MinInt64 has no positive int64 counterpart
	} else {
		u = uint64(v)
	}

	dst = strconv.AppendUint(dst, u/Scale, 10)

	return append(dst, '.', byte('0'+u%Scale))
}

// Format returns the decimal text of the scaled value v.
func Format(v int64) string {
	var buf [24]byte
	return string(Append(buf[:0], v))
}

// Float returns the real value of the scaled value v.
func Float(v int64) float64 {
	return float64(v) / Scale
}

// RoundDiv divides sum by count and rounds the quotient half toward positive
// infinity, so a mean of -0.05 reports as 0.0 and 0.05 as 0.1.
//
// The operands are scaled values; the result is scaled as well. count must be positive.
func RoundDiv(sum, count int64) int64 {
	return floorDiv(2*sum+count, 2*count)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}
