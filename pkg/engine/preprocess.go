package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source before it reaches zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols that could clash with user variables.
//  2. kebab-case identifiers become snake_case (clone-of -> clone_of);
//     zygomys reads a hyphen as the subtraction operator.
//  3. ; line comments become // comments, the zygomys form.
//
// String literals, both "..." and `...`, pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := []byte(source)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			i = copyQuoted(&out, b, i, '"', true)
		case c == '`':
			i = copyQuoted(&out, b, i, '`', false)
		case c == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for ; i < len(b) && b[i] != '\n'; i++ {
				out.WriteByte(b[i])
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyQuoted copies the literal starting at b[i] up to and including its
// closing quote and returns the index after it.
func copyQuoted(out *strings.Builder, b []byte, i int, quote byte, escapes bool) int {
	j := skipQuoted(b, i, quote, escapes)
	out.Write(b[i:j])
	return j
}

// skipQuoted returns the index after the literal starting at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i += 2
			continue
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

// valueFn is the builtin returning its only argument.
const valueFn = "scene_value"

// wrapLastAtom rewrites preprocessed source whose last top-level form is a
// bare atom, typically the name of the scene node, into a call of valueFn.
// zygomys does not report a lone trailing symbol as the value of the
// program, but it does report the value of a call.
func wrapLastAtom(src string) string {
	b := []byte(src)
	start, end := -1, -1
	depth := 0
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			for i < len(b) && b[i] != '\n' {
				i++
			}
		case c == '"' || c == '`':
			if depth == 0 {
				start, end = -1, -1
			}
			i = skipQuoted(b, i, c, c == '"')
		case c == '(' || c == '[' || c == '{':
			if depth == 0 {
				start, end = -1, -1
			}
			depth++
			i++
		case c == ')' || c == ']' || c == '}':
			depth--
			i++
		case c == '\'':
			// A quoted form is data, never the scene.
			if depth == 0 {
				start, end = -1, -1
			}
			for i++; i < len(b) && !isDelim(b[i]); i++ {
			}
		case isSpace(c):
			i++
		default:
			j := i
			for j < len(b) && !isDelim(b[j]) {
				j++
			}
			if depth == 0 {
				start, end = i, j
			}
			i = j
		}
	}
	if start < 0 {
		return src
	}
	return src[:start] + "(" + valueFn + " " + src[start:end] + ")" + src[end:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '[', ']', '{', '}', '"', '`', '\'':
		return true
	}
	return isSpace(c)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
