// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// maxArgNum bounds explicit argument numbers such as %12$s.
	maxArgNum = 64

	// maxWidth bounds field width and precision so a template cannot ask
	// for an arbitrarily large allocation.
	maxWidth = 1024
)

var (
	errZeroArgNum    = errors.New("argument number must be greater than zero")
	errArgNumTooHigh = fmt.Errorf("argument number must not exceed %d", maxArgNum)
	errWidthTooLarge = fmt.Errorf("width and precision must not exceed %d", maxWidth)
)

// printfVerbs lists the conversion characters accepted after a percent sign.
const printfVerbs = "sdufFeExXobc"

// Style describes which placeholder syntaxes occur in a template.
type Style uint8

const (
	// StylePlain templates contain no placeholders.
	StylePlain Style = iota
	// StyleNamed templates only use {NAME} placeholders.
	StyleNamed
	// StylePositional templates only use printf placeholders.
	StylePositional
	// StyleMixed templates use both, which happens after legacy
	// concatenations like $scripturl were rewritten to {SCRIPTURL}.
	StyleMixed
)

func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleNamed:
		return "named"
	case StylePositional:
		return "positional"
	case StyleMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Spec is a printf conversion specification.
type Spec struct {
	Verb      byte
	LeftAlign bool
	Plus      bool
	Pad       rune
	Width     int
	Precision int // -1 when not given
}

// Placeholder is a reference to a value supplied at render time.
// Exactly one of Name and Index is set.
type Placeholder struct {
	Name  string // for {NAME}
	Index int    // 1-based, for printf conversions
	Spec  Spec
}

// Named reports whether p is a brace-named placeholder.
func (p Placeholder) Named() bool {
	return p.Name != ""
}

// String returns p in a normalised source form: "{NAME}" or "%N$v".
func (p Placeholder) String() string {
	if p.Named() {
		return "{" + p.Name + "}"
	}

	return "%" + strconv.Itoa(p.Index) + "$" + string(p.Spec.Verb)
}

type segment struct {
	text string
	ph   Placeholder
	isPh bool
}

// Template is a parsed language string. The zero value is an empty template.
type Template struct {
	raw          string
	segs         []segment
	placeholders []Placeholder
	style        Style
}

// ParseError reports a malformed conversion in a template.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid placeholder at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses raw into a Template.
func Parse(raw string) (Template, error) {
	t := Template{raw: raw}

	var (
		lit        strings.Builder
		sequential int
		named      bool
		positional bool
	)

	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); {
		switch raw[i] {
		case '%':
			if i+1 < len(raw) && raw[i+1] == '%' {
				lit.WriteByte('%')

				i += 2

				continue
			}

			ph, n, err := parseConversion(raw[i:], &sequential)
			if err != nil {
				return Template{}, &ParseError{Offset: i, Err: err}
			}

			if n == 0 {
				lit.WriteByte('%')
				i++

				continue
			}

			flush()
			t.segs = append(t.segs, segment{ph: ph, isPh: true})
			t.placeholders = append(t.placeholders, ph)
			positional = true
			i += n
		case '{':
			name, n := parseBrace(raw[i:])
			if n == 0 {
				lit.WriteByte('{')
				i++

				continue
			}

			flush()

			ph := Placeholder{Name: name}
			t.segs = append(t.segs, segment{ph: ph, isPh: true})
			t.placeholders = append(t.placeholders, ph)
			named = true
			i += n
		default:
			lit.WriteByte(raw[i])
			i++
		}
	}

	flush()

	switch {
	case named && positional:
		t.style = StyleMixed
	case named:
		t.style = StyleNamed
	case positional:
		t.style = StylePositional
	}

	return t, nil
}

// MustParse is like Parse but panics on error. It is intended for tests
// and package-level templates.
func MustParse(raw string) Template {
	t, err := Parse(raw)
	if err != nil {
		panic("catalog: " + err.Error())
	}

	return t
}

// parseBrace matches {NAME} at the start of s and returns the name and the
// number of bytes consumed, or 0 when s does not start with a placeholder.
func parseBrace(s string) (string, int) {
	if len(s) < 3 || s[1] < 'A' || s[1] > 'Z' {
		return "", 0
	}

	for j := 2; j < len(s); j++ {
		c := s[j]

		switch {
		case c == '}':
			return s[1:j], j + 1
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return "", 0
		}
	}

	return "", 0
}

// parseConversion matches a printf conversion at the start of s, which
// begins with '%'. It returns 0 consumed bytes when s is not a conversion.
func parseConversion(s string, sequential *int) (Placeholder, int, error) {
	j := 1
	argNum := 0

	k := j
	for k < len(s) && isDigit(s[k]) {
		k++
	}

	if k > j && k < len(s) && s[k] == '$' {
		n, err := strconv.Atoi(s[j:k])

		switch {
		case err != nil || n > maxArgNum:
			return Placeholder{}, 0, errArgNumTooHigh
		case n == 0:
			return Placeholder{}, 0, errZeroArgNum
		}

		argNum = n
		j = k + 1
	}

	spec := Spec{Pad: ' ', Precision: -1}

flags:
	for j < len(s) {
		switch s[j] {
		case '-':
			spec.LeftAlign = true
		case '+':
			spec.Plus = true
		case '0':
			spec.Pad = '0'
		case '\'':
			if j+1 >= len(s) {
				return Placeholder{}, 0, nil
			}

			pad, size := utf8.DecodeRuneInString(s[j+1:])
			spec.Pad = pad
			j += size
		default:
			break flags
		}

		j++
	}

	w, n, ok := parseNumber(s[j:])
	if !ok {
		return Placeholder{}, 0, errWidthTooLarge
	}

	spec.Width = w
	j += n

	if j < len(s) && s[j] == '.' {
		p, n, ok := parseNumber(s[j+1:])
		if !ok {
			return Placeholder{}, 0, errWidthTooLarge
		}

		spec.Precision = p
		j += 1 + n
	}

	if j >= len(s) || strings.IndexByte(printfVerbs, s[j]) < 0 {
		return Placeholder{}, 0, nil
	}

	spec.Verb = s[j]

	if argNum == 0 {
		*sequential++
		argNum = *sequential
	}

	return Placeholder{Index: argNum, Spec: spec}, j + 1, nil
}

func parseNumber(s string) (int, int, bool) {
	n := 0
	i := 0

	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		if n > maxWidth {
			return 0, 0, false
		}

		i++
	}

	return n, i, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Raw returns the template text as it was loaded.
func (t Template) Raw() string {
	return t.raw
}

// Style reports which placeholder syntaxes t uses.
func (t Template) Style() Style {
	return t.style
}

// Placeholders returns the placeholders of t in order of appearance.
// The returned slice is a copy.
func (t Template) Placeholders() []Placeholder {
	out := make([]Placeholder, len(t.placeholders))
	copy(out, t.placeholders)

	return out
}

// UnresolvedError is returned by [Template.Execute] when a placeholder has
// no value.
type UnresolvedError struct {
	Placeholder Placeholder
}

func (e *UnresolvedError) Error() string {
	return "no value for placeholder " + e.Placeholder.String()
}

// Execute renders t, asking value for every placeholder. If value reports
// a placeholder as absent, Execute returns an [*UnresolvedError] and no text.
func (t Template) Execute(value func(Placeholder) (any, bool)) (string, error) {
	if t.style == StylePlain {
		// Plain templates hold at most one literal segment.
		if len(t.segs) == 0 {
			return "", nil
		}

		return t.segs[0].text, nil
	}

	var b strings.Builder

	b.Grow(len(t.raw))

	for _, seg := range t.segs {
		if !seg.isPh {
			b.WriteString(seg.text)

			continue
		}

		v, ok := value(seg.ph)
		if !ok {
			return "", &UnresolvedError{Placeholder: seg.ph}
		}

		if seg.ph.Named() {
			b.WriteString(toString(v))
		} else {
			b.WriteString(seg.ph.Spec.Format(v))
		}
	}

	return b.String(), nil
}
