// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// defaultFloatPrecision matches sprintf's default for %f and %e.
	defaultFloatPrecision = 6
)

// Format renders v according to s, following sprintf conventions of the
// language files: %d and %u coerce to an integer, %f/%e to a float and %s
// interpolates the value as text.
func (s Spec) Format(v any) string {
	var body, sign string

	switch s.Verb {
	case 's':
		body = toString(v)
		if s.Precision >= 0 && utf8.RuneCountInString(body) > s.Precision {
			body = truncateRunes(body, s.Precision)
		}

		return s.pad("", body)
	case 'd':
		n := toInt(v)
		sign = s.signOf(n < 0)
		body = strconv.FormatUint(absInt(n), 10)
	case 'u':
		body = strconv.FormatUint(uint64(toInt(v)), 10) // #nosec G115 -- two's complement like sprintf %u
	case 'f', 'F':
		f := toFloat(v)
		sign = s.signOf(f < 0)
		body = strconv.FormatFloat(math.Abs(f), 'f', s.precision(), 64)
	case 'e', 'E':
		f := toFloat(v)
		sign = s.signOf(f < 0)
		body = shortExponent(strconv.FormatFloat(math.Abs(f), 'e', s.precision(), 64))

		if s.Verb == 'E' {
			body = strings.ToUpper(body)
		}
	case 'x':
		body = strconv.FormatUint(uint64(toInt(v)), 16) // #nosec G115
	case 'X':
		body = strings.ToUpper(strconv.FormatUint(uint64(toInt(v)), 16)) // #nosec G115
	case 'o':
		body = strconv.FormatUint(uint64(toInt(v)), 8) // #nosec G115
	case 'b':
		body = strconv.FormatUint(uint64(toInt(v)), 2) // #nosec G115
	case 'c':
		// Width and padding do not apply to %c.
		return string(rune(toInt(v)))
	default:
		return toString(v)
	}

	return s.pad(sign, body)
}

func (s Spec) precision() int {
	if s.Precision < 0 {
		return defaultFloatPrecision
	}

	return s.Precision
}

func (s Spec) signOf(negative bool) string {
	switch {
	case negative:
		return "-"
	case s.Plus:
		return "+"
	default:
		return ""
	}
}

// pad applies width and alignment. With zero padding the sign stays in
// front of the padding ("-0042").
func (s Spec) pad(sign, body string) string {
	n := s.Width - utf8.RuneCountInString(sign) - utf8.RuneCountInString(body)
	if n <= 0 {
		return sign + body
	}

	fill := strings.Repeat(string(s.Pad), n)

	switch {
	case s.LeftAlign:
		return sign + body + fill
	case s.Pad == '0':
		return sign + fill + body
	default:
		return fill + sign + body
	}
}

func truncateRunes(s string, n int) string {
	i := 0

	for pos := range s {
		if i == n {
			return s[:pos]
		}

		i++
	}

	return s
}

func absInt(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1 // #nosec G115 -- avoids overflow on MinInt64
	}

	return uint64(n)
}

// shortExponent turns Go's "1.5e+03" into "1.5e+3".
func shortExponent(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 || i+2 >= len(s) {
		return s
	}

	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}

	return s[:i+2] + digits
}

// toString converts v the way the language files expect scalar values to
// print: booleans as "1" or "", whole floats without a fractional part.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}

		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		return fmt.Sprint(v)
	}
}

// toInt coerces v to an integer. Floats truncate toward zero, strings are
// read up to the first character that is not part of a leading integer.
func toInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}

		return 0
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x) // #nosec G115
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) // #nosec G115
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case string:
		return leadingInt(x)
	case []byte:
		return leadingInt(string(x))
	case fmt.Stringer:
		return leadingInt(x.String())
	default:
		return 0
	}
}

func floatToInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	if f >= math.MaxInt64 {
		return math.MaxInt64
	}

	if f <= math.MinInt64 {
		return math.MinInt64
	}

	return int64(math.Trunc(f))
}

func leadingInt(s string) int64 {
	prefix, integral := numericPrefix(s)
	if prefix == "" {
		return 0
	}

	if !integral {
		return floatToInt(leadingFloat(prefix))
	}

	n, err := strconv.ParseInt(prefix, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(prefix, "-") {
			return math.MinInt64
		}

		return math.MaxInt64
	}

	if err != nil {
		return 0
	}

	return n
}

// numericPrefix returns the longest leading decimal number of s after
// whitespace, such as "-1.5e3" from "-1.5e3 apples". integral is false when
// the number has a fraction or an exponent. Words like "inf" and "nan" are
// not numbers here.
func numericPrefix(s string) (prefix string, integral bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}

	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}

	integral = true

	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
		}

		if digits > 0 || frac > end+1 {
			digits += frac - end - 1
			end = frac
			integral = false
		}
	}

	if digits == 0 {
		return "", true
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '-' || s[exp] == '+') {
			exp++
		}

		start := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}

		if exp > start {
			end = exp
			integral = false
		}
	}

	return s[:end], integral
}

// toFloat coerces v to a float. Strings are read up to the longest numeric
// prefix.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case string:
		return leadingFloat(x)
	case []byte:
		return leadingFloat(string(x))
	case fmt.Stringer:
		return leadingFloat(x.String())
	default:
		return float64(toInt(v))
	}
}

func leadingFloat(s string) float64 {
	prefix, _ := numericPrefix(s)
	if prefix == "" {
		return 0
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}

	return f
}
