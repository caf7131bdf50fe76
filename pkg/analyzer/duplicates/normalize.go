package duplicates

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Normalize strips comments, collapses horizontal whitespace and drops blank
// lines. It is idempotent: Normalize(Normalize(s)) == Normalize(s).
//
// Comment stripping runs as an explicit state machine over runes so that
// string literals are never misread as comments (a "//" inside a quoted
// string survives, a quote inside a comment does not open a string).
func Normalize(code string) string {
	stripped := stripComments(code)

	var b strings.Builder
	for _, line := range strings.Split(stripped, "\n") {
		line = strings.TrimSpace(collapseSpaces(line))
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// Canonicalize produces the identifier/literal-abstracted form of code:
// light normalization, then every identifier outside the keyword set becomes
// a sequential placeholder (v1, v2, ...; the same name always maps to the
// same placeholder within one block), every string literal becomes STR and
// every numeric literal becomes NUM. Only STR and NUM pass through
// unchanged; identifiers that happen to look like placeholders go through
// the rename map so a source-level "v1" cannot collide with an assigned one.
// The transform stays idempotent because canonical output lists its
// placeholders in first-occurrence order, so a second pass maps each back to
// itself.
func Canonicalize(code string) string {
	normalized := Normalize(code)
	runes := []rune(normalized)

	var b strings.Builder
	b.Grow(len(normalized))
	names := make(map[string]string)
	counter := 0

	i := 0
	for i < len(runes) {
		c := runes[i]

		switch {
		case c == '"' || c == '\'' || c == '`':
			i = scanString(runes, i)
			b.WriteString("STR")
		case isDigit(c):
			i = scanNumber(runes, i)
			b.WriteString("NUM")
		case isIdentStart(c):
			j := scanIdent(runes, i)
			word := string(runes[i:j])
			i = j
			switch {
			case keywords[word] || word == "STR" || word == "NUM":
				b.WriteString(word)
			default:
				placeholder, ok := names[word]
				if !ok {
					counter++
					placeholder = "v" + strconv.Itoa(counter)
					names[word] = placeholder
				}
				b.WriteString(placeholder)
			}
		default:
			b.WriteRune(c)
			i++
		}
	}
	return b.String()
}

// hashContent computes the 64-bit digest used as a candidate-bucket key.
// Equal digests narrow candidates; they are never the final verdict.
func hashContent(text string) uint64 {
	return xxhash.Sum64String(text)
}

// stripComments removes line comments (//, # except #! and #[), block
// comments (/* */) and triple-quoted blocks while copying string literals
// verbatim.
func stripComments(code string) string {
	runes := []rune(code)
	out := make([]rune, 0, len(runes))

	i := 0
	for i < len(runes) {
		c := runes[i]

		if (c == '"' || c == '\'') && hasTriple(runes, i) {
			i = skipTriple(runes, i)
			continue
		}

		if c == '"' || c == '\'' || c == '`' {
			j := scanString(runes, i)
			out = append(out, runes[i:j]...)
			i = j
			continue
		}

		if c == '/' && i+1 < len(runes) {
			switch runes[i+1] {
			case '/':
				i = skipToLineEnd(runes, i)
				continue
			case '*':
				i = skipBlockComment(runes, i)
				continue
			}
		}

		// # starts a comment except for shebangs and attribute markers.
		if c == '#' {
			if i+1 >= len(runes) || (runes[i+1] != '!' && runes[i+1] != '[') {
				i = skipToLineEnd(runes, i)
				continue
			}
		}

		out = append(out, c)
		i++
	}
	return string(out)
}

// scanString returns the index just past the string literal starting at i.
// Single- and double-quoted strings terminate at the closing quote or at end
// of line if unterminated; backtick strings may span lines. Backslash
// escapes are honored for ' and ".
func scanString(runes []rune, i int) int {
	quote := runes[i]
	i++
	for i < len(runes) {
		c := runes[i]
		if c == quote {
			return i + 1
		}
		if quote != '`' {
			if c == '\n' {
				return i
			}
			if c == '\\' && i+1 < len(runes) {
				i++
			}
		}
		i++
	}
	return i
}

func hasTriple(runes []rune, i int) bool {
	return i+2 < len(runes) && runes[i+1] == runes[i] && runes[i+2] == runes[i]
}

// skipTriple consumes a triple-quoted block, including its terminator.
// An unterminated block runs to end of input.
func skipTriple(runes []rune, i int) int {
	quote := runes[i]
	i += 3
	for i < len(runes) {
		if runes[i] == quote && hasTriple(runes, i) {
			return i + 3
		}
		i++
	}
	return i
}

func skipToLineEnd(runes []rune, i int) int {
	for i < len(runes) && runes[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(runes []rune, i int) int {
	i += 2
	for i+1 < len(runes) {
		if runes[i] == '*' && runes[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(runes)
}

// scanNumber consumes a numeric literal: digits plus the separator, radix
// and exponent characters that appear in common literal syntaxes (1_000,
// 0xFF, 3.14, 1e9).
func scanNumber(runes []rune, i int) int {
	for i < len(runes) {
		c := runes[i]
		if isDigit(c) || c == '.' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i++
			continue
		}
		break
	}
	return i
}

func scanIdent(runes []rune, i int) int {
	for i < len(runes) && isIdentChar(runes[i]) {
		i++
	}
	return i
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, c := range s {
		if c == ' ' || c == '\t' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(c)
	}
	return b.String()
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

// keywords are never rewritten during canonicalization.
var keywords = map[string]bool{
	"fn": true, "function": true, "def": true, "class": true, "struct": true,
	"enum": true, "trait": true, "if": true, "else": true, "for": true,
	"while": true, "loop": true, "match": true, "switch": true,
	"return": true, "break": true, "continue": true, "let": true,
	"const": true, "var": true, "pub": true, "private": true, "public": true,
	"protected": true, "static": true, "async": true, "await": true,
	"yield": true, "import": true, "from": true, "use": true,
	"true": true, "false": true, "null": true, "nil": true,
	"None": true, "Some": true,
}
