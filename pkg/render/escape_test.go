package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "plain text", input: "hello", expected: "hello"},
		{name: "ampersand", input: "a&b", expected: "a&amp;b"},
		{name: "tags", input: "<b>", expected: "&lt;b&gt;"},
		{name: "quotes", input: `"it's"`, expected: "&quot;it&#39;s&quot;"},
		{name: "named entity kept", input: "&copy; 2024", expected: "&copy; 2024"},
		{name: "decimal entity kept", input: "&#169;", expected: "&#169;"},
		{name: "hex entity kept", input: "&#xA9;", expected: "&#xA9;"},
		{name: "unterminated entity", input: "&copy 2024", expected: "&amp;copy 2024"},
		{name: "bare ampersand at end", input: "R&", expected: "R&amp;"},
		{name: "empty numeric", input: "&#;", expected: "&amp;#;"},
		{name: "unicode", input: "héllo <wörld>", expected: "héllo &lt;wörld&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := escapeHTML(tt.input)
			if result != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if again := escapeHTML(result); again != result {
				t.Errorf("escapeHTML not idempotent: %q -> %q", result, again)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text", input: "hello", expected: "hello"},
		{name: "double quote", input: `value="test"`, expected: "value=&quot;test&quot;"},
		{name: "newline", input: "line1\nline2", expected: "line1&#10;line2"},
		{name: "mixed whitespace", input: "a\n\r\tb", expected: "a&#10;&#13;&#9;b"},
		{name: "entity kept", input: "&amp;", expected: "&amp;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := escapeAttr(tt.input)
			if result != tt.expected {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
