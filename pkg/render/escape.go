package render

import "strings"

// escapeHTML escapes text for inclusion in HTML content. An ampersand that
// already starts a character reference is kept, so escaping is idempotent.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if entityLen(s[i:]) > 0 {
				buf.WriteByte('&')
			} else {
				buf.WriteString("&amp;")
			}
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteByte(c)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for inclusion in a quoted attribute value. In
// addition to escapeHTML it escapes whitespace that would break attribute
// parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if entityLen(s[i:]) > 0 {
				buf.WriteByte('&')
			} else {
				buf.WriteString("&amp;")
			}
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteByte(c)
		}
	}

	return buf.String()
}

// entityLen returns the length of the character reference at the start of s
// (&name;, &#123; or &#x1F;), or 0 if s does not start with one.
func entityLen(s string) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	if s[i] == '#' {
		i++
		hex := false
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			hex = true
			i++
		}
		start := i
		for i < len(s) && (isDigit(s[i]) || (hex && isHexLetter(s[i]))) {
			i++
		}
		if i == start || i-start > 8 {
			return 0
		}
	} else {
		if !isLetter(s[i]) {
			return 0
		}
		start := i
		for i < len(s) && (isLetter(s[i]) || isDigit(s[i])) {
			i++
		}
		if i-start > 32 {
			return 0
		}
	}
	if i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isLetter(c byte) bool    { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isHexLetter(c byte) bool { return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
