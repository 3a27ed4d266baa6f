// File: pkg/ignore/patterns.go
package ignore

import (
	"regexp"
	"strings"
)

// globToRegex translates a shell-style glob into an anchored regular expression.
// '*' matches any run of characters including '/', '?' matches one character,
// and bracket classes support '!' negation. An unterminated '[' is a literal.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			// Collapse runs of stars; they all mean the same thing here.
			for i+1 < len(runes) && runes[i+1] == '*' {
				i++
			}
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			class, next, ok := bracketClass(runes, i)
			if !ok {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(class)
			i = next
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`$`)
	return b.String()
}

// bracketClass converts the class starting at runes[start] ('[') into a regex
// class. It returns the index of the closing ']' and false when unterminated.
func bracketClass(runes []rune, start int) (string, int, bool) {
	j := start + 1
	if j < len(runes) && runes[j] == '!' {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for j < len(runes) && runes[j] != ']' {
		j++
	}
	if j >= len(runes) {
		return "", start, false
	}

	body := runes[start+1 : j]
	var b strings.Builder
	b.WriteByte('[')
	for k, r := range body {
		switch {
		case k == 0 && r == '!':
			b.WriteByte('^')
		case r == '-':
			b.WriteRune(r)
		case isASCIIPunct(r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(']')
	return b.String(), j, true
}

func isASCIIPunct(r rune) bool {
	return r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,./:;<=>?@[\\]^_`{|}~", r)
}
