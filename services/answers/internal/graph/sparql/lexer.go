package sparql

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokString
	tokInt
	tokWord
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return "'" + t.text + "'"
}

// is reports whether t is the given keyword (case-insensitive) or punctuation.
func (t token) is(s string) bool {
	switch t.kind {
	case tokWord:
		return strings.EqualFold(t.text, s)
	case tokPunct:
		return t.text == s
	}
	return false
}

var punct2 = []string{"<=", ">=", "!=", "&&", "||", "^^"}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case r == '<':
			if end, ok := scanIRI(src, i); ok {
				toks = append(toks, token{tokIRI, src[i+1 : end], i})
				i = end + 1
				continue
			}
			if strings.HasPrefix(src[i:], "<=") {
				toks = append(toks, token{tokPunct, "<=", i})
				i += 2
				continue
			}
			toks = append(toks, token{tokPunct, "<", i})
			i++
		case r == '?' || r == '$':
			j := i + 1
			for j < len(src) && isNameByte(src[j]) {
				j++
			}
			if j == i+1 {
				return nil, errors.Newf("sparql: empty variable name at %d", i)
			}
			toks = append(toks, token{tokVar, src[i+1 : j], i})
			i = j
		case r == '"' || r == '\'':
			s, end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, s, i})
			i = end
		case r >= '0' && r <= '9' || (r == '-' || r == '+') && i+1 < len(src) && isDigit(src[i+1]):
			j := i + 1
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			toks = append(toks, token{tokInt, src[i:j], i})
			i = j
		case unicode.IsLetter(r) || r == '_' || r == ':':
			j := i
			colon := false
			for j < len(src) {
				c := src[j]
				if c == ':' {
					colon = true
				} else if !isNameByte(c) && c != '-' && c != '.' {
					break
				}
				j++
			}
			// A trailing dot ends the triple, it is not part of the name.
			for j > i && src[j-1] == '.' {
				j--
			}
			kind := tokWord
			if colon {
				kind = tokPName
			}
			toks = append(toks, token{kind, src[i:j], i})
			i = j
		default:
			matched := false
			for _, p := range punct2 {
				if strings.HasPrefix(src[i:], p) {
					toks = append(toks, token{tokPunct, p, i})
					i += len(p)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			if strings.ContainsRune("{}().;,*=<>!@", r) {
				toks = append(toks, token{tokPunct, string(r), i})
				i += w
				continue
			}
			return nil, errors.Newf("sparql: unexpected %q at %d", r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// scanIRI returns the index of the closing '>' when src[start:] begins an
// IRI reference rather than a comparison operator.
func scanIRI(src string, start int) (int, bool) {
	for j := start + 1; j < len(src); j++ {
		switch c := src[j]; {
		case c == '>':
			return j, j > start+1
		case c <= ' ' || c == '<' || c == '"' || c == '{' || c == '}' || c == '|' || c == '`':
			return 0, false
		}
	}
	return 0, false
}

func scanString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for j := start + 1; j < len(src); j++ {
		c := src[j]
		switch {
		case c == quote:
			return b.String(), j + 1, nil
		case c == '\\' && j+1 < len(src):
			j++
			switch src[j] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(src[j])
			}
		case c == '\n':
			return "", 0, errors.Newf("sparql: newline in string at %d", start)
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.Newf("sparql: unterminated string at %d", start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameByte(c byte) bool {
	return c == '_' || isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
