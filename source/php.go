// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errPHPUnexpected = errors.New("unexpected input")
	errPHPUndefined  = errors.New("reference to undefined string")
	errPHPNotString  = errors.New("array used where a string is expected")
	errPHPEOF        = errors.New("unexpected end of file")
)

// contextPlaceholders maps globals that older language files concatenated
// into their strings onto named placeholders.
var contextPlaceholders = map[string]string{
	"scripturl":       "SCRIPTURL",
	"boardurl":        "BOARDURL",
	"webmaster_email": "WEBMASTEREMAIL",
	"forum_version":   "FORUMVERSION",
	"mbname":          "FORUMNAME",
}

// PHPError reports a syntax problem in a legacy language file.
type PHPError struct {
	Line int
	Err  error
	Near string
}

func (e *PHPError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("line %d: %v near %q", e.Line, e.Err, e.Near)
	}

	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *PHPError) Unwrap() error {
	return e.Err
}

type phpValue struct {
	str   string
	elems []phpElem
	isArr bool
}

type phpElem struct {
	key string
	val phpValue
}

type phpParser struct {
	src     string
	pos     int
	line    int
	entries map[string]string
}

// parsePHP reads a legacy language table made of $txt['key'] = '...';
// statements.
//
// $txt['a'] and $txt['a']['b'] assign keys "a" and "a_b". Other variables
// keep their name as a prefix, so $helptxt['x'] becomes "helptxt_x" and a
// bare $forum_copyright becomes "forum_copyright". Arrays are flattened
// with "_" and their element keys or indexes. Concatenated globals such as
// $scripturl become {SCRIPTURL}; $modSettings['x'] becomes {SETTING_X} and
// $context['forum_name'] becomes {FORUMNAME}.
func parsePHP(data []byte) (map[string]string, error) {
	p := &phpParser{src: string(data), line: 1, entries: make(map[string]string)}

	if err := p.parse(); err != nil {
		return nil, err
	}

	return p.entries, nil
}

func (p *phpParser) fail(err error) error {
	near := p.src[p.pos:]
	if len(near) > 20 {
		near = near[:20]
	}

	return &PHPError{Line: p.line, Err: err, Near: near}
}

func (p *phpParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *phpParser) peek() byte {
	if p.eof() {
		return 0
	}

	return p.src[p.pos]
}

func (p *phpParser) advance(n int) {
	for range n {
		if p.eof() {
			return
		}

		if p.src[p.pos] == '\n' {
			p.line++
		}

		p.pos++
	}
}

func (p *phpParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *phpParser) expect(c byte) error {
	p.skipSpace()

	if p.peek() != c {
		if p.eof() {
			return p.fail(errPHPEOF)
		}

		return p.fail(fmt.Errorf("%w: want %q", errPHPUnexpected, c))
	}

	p.advance(1)

	return nil
}

// skipSpace skips whitespace and comments.
func (p *phpParser) skipSpace() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.advance(1)
		case c == '#' || p.hasPrefix("//"):
			for !p.eof() && p.peek() != '\n' {
				p.advance(1)
			}
		case p.hasPrefix("/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.advance(len(p.src) - p.pos)

				return
			}

			p.advance(end + 4)
		default:
			return
		}
	}
}

func (p *phpParser) parse() error {
	for {
		p.skipSpace()

		if p.eof() {
			return nil
		}

		switch {
		case p.hasPrefix("<?php"):
			p.advance(len("<?php"))
		case p.hasPrefix("?>"):
			p.advance(2)
		case p.peek() == '$':
			if err := p.assignment(); err != nil {
				return err
			}
		case p.hasPrefix("global") && !isIdentByte(p.at(len("global"))):
			end := strings.IndexByte(p.src[p.pos:], ';')
			if end < 0 {
				return p.fail(errPHPEOF)
			}

			p.advance(end + 1)
		default:
			return p.fail(errPHPUnexpected)
		}
	}
}

func (p *phpParser) at(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}

	return p.src[p.pos+offset]
}

// variable reads $name followed by any number of [index] parts.
func (p *phpParser) variable() (string, []string, error) {
	if p.peek() != '$' {
		return "", nil, p.fail(errPHPUnexpected)
	}

	p.advance(1)

	name := p.ident()
	if name == "" {
		return "", nil, p.fail(errPHPUnexpected)
	}

	var path []string

	for {
		save, saveLine := p.pos, p.line

		p.skipSpace()

		if p.peek() != '[' {
			p.pos, p.line = save, saveLine

			return name, path, nil
		}

		p.advance(1)
		p.skipSpace()

		idx, err := p.indexKey()
		if err != nil {
			return "", nil, err
		}

		if err := p.expect(']'); err != nil {
			return "", nil, err
		}

		path = append(path, idx)
	}
}

func (p *phpParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.advance(1)
	}

	return p.src[start:p.pos]
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (p *phpParser) indexKey() (string, error) {
	switch c := p.peek(); {
	case c == '\'':
		return p.singleQuoted()
	case c == '"':
		return p.doubleQuoted()
	case c == '-' || c >= '0' && c <= '9':
		return p.number(), nil
	case isIdentByte(c):
		return p.ident(), nil
	default:
		return "", p.fail(errPHPUnexpected)
	}
}

func (p *phpParser) assignment() error {
	name, path, err := p.variable()
	if err != nil {
		return err
	}

	key := tableKey(name, path)

	p.skipSpace()

	appendMode := false
	if p.hasPrefix(".=") {
		appendMode = true

		p.advance(1)
	}

	if err := p.expect('='); err != nil {
		return err
	}

	val, err := p.expression()
	if err != nil {
		return err
	}

	if err := p.expect(';'); err != nil {
		return err
	}

	if appendMode {
		if val.isArr {
			return p.fail(errPHPNotString)
		}

		p.entries[key] += val.str

		return nil
	}

	p.store(key, val)

	return nil
}

func tableKey(name string, path []string) string {
	parts := path
	if name != "txt" {
		parts = append([]string{name}, path...)
	}

	return strings.Join(parts, "_")
}

func (p *phpParser) store(key string, val phpValue) {
	if !val.isArr {
		p.entries[key] = val.str

		return
	}

	for _, e := range val.elems {
		k := e.key
		if key != "" {
			k = key + "_" + e.key
		}

		p.store(k, e.val)
	}
}

func (p *phpParser) expression() (phpValue, error) {
	val, err := p.operand()
	if err != nil {
		return phpValue{}, err
	}

	for {
		save, saveLine := p.pos, p.line

		p.skipSpace()

		if p.peek() != '.' || p.at(1) == '=' {
			p.pos, p.line = save, saveLine

			return val, nil
		}

		p.advance(1)
		p.skipSpace()

		next, err := p.operand()
		if err != nil {
			return phpValue{}, err
		}

		if val.isArr || next.isArr {
			return phpValue{}, p.fail(errPHPNotString)
		}

		val.str += next.str
	}
}

func (p *phpParser) operand() (phpValue, error) {
	p.skipSpace()

	switch c := p.peek(); {
	case c == '\'':
		s, err := p.singleQuoted()

		return phpValue{str: s}, err
	case c == '"':
		s, err := p.doubleQuoted()

		return phpValue{str: s}, err
	case c == '$':
		name, path, err := p.variable()
		if err != nil {
			return phpValue{}, err
		}

		s, err := p.reference(name, path)

		return phpValue{str: s}, err
	case c == '-' || c >= '0' && c <= '9':
		return phpValue{str: p.number()}, nil
	case c == '(':
		p.advance(1)

		v, err := p.expression()
		if err != nil {
			return phpValue{}, err
		}

		return v, p.expect(')')
	case c == '[':
		p.advance(1)

		return p.array(']')
	case c == 0:
		return phpValue{}, p.fail(errPHPEOF)
	}

	word := p.ident()

	switch strings.ToLower(word) {
	case "array":
		if err := p.expect('('); err != nil {
			return phpValue{}, err
		}

		return p.array(')')
	case "true":
		return phpValue{str: "1"}, nil
	case "false", "null":
		return phpValue{}, nil
	}

	return phpValue{}, p.fail(errPHPUnexpected)
}

func (p *phpParser) array(closer byte) (phpValue, error) {
	val := phpValue{isArr: true}
	next := 0

	for {
		p.skipSpace()

		if p.peek() == closer {
			p.advance(1)

			return val, nil
		}

		first, err := p.expression()
		if err != nil {
			return phpValue{}, err
		}

		p.skipSpace()

		elem := phpElem{key: strconv.Itoa(next), val: first}

		if p.hasPrefix("=>") {
			p.advance(2)

			if first.isArr {
				return phpValue{}, p.fail(errPHPNotString)
			}

			v, err := p.expression()
			if err != nil {
				return phpValue{}, err
			}

			elem = phpElem{key: first.str, val: v}

			if n, err := strconv.Atoi(first.str); err == nil && n >= next {
				next = n + 1
			}
		} else {
			next++
		}

		val.elems = append(val.elems, elem)

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.advance(1)
		case closer:
		default:
			return phpValue{}, p.fail(errPHPUnexpected)
		}
	}
}

func (p *phpParser) number() string {
	start := p.pos
	if p.peek() == '-' {
		p.advance(1)
	}

	for !p.eof() && (p.peek() >= '0' && p.peek() <= '9' || p.peek() == '.') {
		p.advance(1)
	}

	return p.src[start:p.pos]
}

// reference renders a variable used inside a string expression.
func (p *phpParser) reference(name string, path []string) (string, error) {
	if name == "txt" && len(path) > 0 {
		key := strings.Join(path, "_")

		s, ok := p.entries[key]
		if !ok {
			return "", p.fail(fmt.Errorf("%w $txt[%q]", errPHPUndefined, key))
		}

		return s, nil
	}

	if ph, ok := contextPlaceholders[name]; ok && len(path) == 0 {
		return "{" + ph + "}", nil
	}

	switch {
	case name == "context" && len(path) == 1 && strings.HasPrefix(path[0], "forum_name"):
		return "{FORUMNAME}", nil
	case name == "modSettings" && len(path) > 0:
		return "{" + placeholderName("SETTING", path) + "}", nil
	case name == "settings" && len(path) == 1 && path[0] == "images_url":
		return "{IMAGESURL}", nil
	case name == "settings" && len(path) > 0:
		return "{" + placeholderName("THEME", path) + "}", nil
	}

	return "{" + placeholderName(name, path) + "}", nil
}

// placeholderName builds an upper-case placeholder name that satisfies
// [A-Z][A-Z0-9_]*.
func placeholderName(prefix string, path []string) string {
	raw := strings.Join(append([]string{prefix}, path...), "_")

	var b strings.Builder

	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := b.String()
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		name = "V" + name
	}

	return name
}

func (p *phpParser) singleQuoted() (string, error) {
	p.advance(1)

	var b strings.Builder

	for {
		if p.eof() {
			return "", p.fail(errPHPEOF)
		}

		c := p.peek()

		switch {
		case c == '\'':
			p.advance(1)

			return b.String(), nil
		case c == '\\' && (p.at(1) == '\'' || p.at(1) == '\\'):
			b.WriteByte(p.at(1))
			p.advance(2)
		default:
			b.WriteByte(c)
			p.advance(1)
		}
	}
}

func (p *phpParser) doubleQuoted() (string, error) {
	p.advance(1)

	var b strings.Builder

	for {
		if p.eof() {
			return "", p.fail(errPHPEOF)
		}

		c := p.peek()

		switch {
		case c == '"':
			p.advance(1)

			return b.String(), nil
		case c == '\\':
			p.escape(&b)
		case c == '$' && isIdentStart(p.at(1)):
			name, path, err := p.interpolated()
			if err != nil {
				return "", err
			}

			s, err := p.reference(name, path)
			if err != nil {
				return "", err
			}

			b.WriteString(s)
		case c == '{' && p.at(1) == '$':
			p.advance(1)

			name, path, err := p.variable()
			if err != nil {
				return "", err
			}

			if p.peek() != '}' {
				return "", p.fail(errPHPUnexpected)
			}

			p.advance(1)

			s, err := p.reference(name, path)
			if err != nil {
				return "", err
			}

			b.WriteString(s)
		default:
			b.WriteByte(c)
			p.advance(1)
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// interpolated reads "$name" or "$name[key]" inside a double-quoted string,
// where array keys are written without quotes.
func (p *phpParser) interpolated() (string, []string, error) {
	p.advance(1)

	name := p.ident()

	if p.peek() != '[' {
		return name, nil, nil
	}

	p.advance(1)

	var key string

	if p.peek() == '\'' {
		k, err := p.singleQuoted()
		if err != nil {
			return "", nil, err
		}

		key = k
	} else {
		key = p.ident()
	}

	if p.peek() != ']' {
		return "", nil, p.fail(errPHPUnexpected)
	}

	p.advance(1)

	return name, []string{key}, nil
}

func (p *phpParser) escape(b *strings.Builder) {
	next := p.at(1)

	switch next {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'v':
		b.WriteByte('\v')
	case 'e':
		b.WriteByte(0x1b)
	case 'f':
		b.WriteByte('\f')
	case '\\', '$', '"':
		b.WriteByte(next)
	case 'x':
		if n, width := hexPrefix(p.src[p.pos+2:], 2); width > 0 {
			b.WriteByte(byte(n))
			p.advance(2 + width)

			return
		}

		b.WriteString(`\x`)
	case 'u':
		if p.at(2) == '{' {
			end := strings.IndexByte(p.src[p.pos+3:], '}')
			if end > 0 {
				if n, err := strconv.ParseUint(p.src[p.pos+3:p.pos+3+end], 16, 32); err == nil && utf8.ValidRune(rune(n)) {
					b.WriteRune(rune(n))
					p.advance(3 + end + 1)

					return
				}
			}
		}

		b.WriteString(`\u`)
	default:
		if next >= '0' && next <= '7' {
			n, width := octalPrefix(p.src[p.pos+1:])
			b.WriteByte(byte(n))
			p.advance(1 + width)

			return
		}

		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(next)
	}

	p.advance(2)
}

func hexPrefix(s string, limit int) (int, int) {
	n, width := 0, 0

	for width < limit && width < len(s) {
		d := strings.IndexByte("0123456789abcdef", lower(s[width]))
		if d < 0 {
			break
		}

		n = n*16 + d
		width++
	}

	return n, width
}

func octalPrefix(s string) (int, int) {
	n, width := 0, 0

	for width < 3 && width < len(s) && s[width] >= '0' && s[width] <= '7' {
		n = n*8 + int(s[width]-'0')
		width++
	}

	return n & 0xff, width
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}

	return c
}
