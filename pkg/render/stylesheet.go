package render

import (
	"strings"

	"github.com/vango-dev/webdsl/pkg/style"
)

// Stylesheet renders keyframe blocks followed by rule blocks, in recording
// order, separated by blank lines. The result ends in a single newline, or
// is empty when nothing was recorded.
func Stylesheet(rules []style.Rule, animations []style.Animation) string {
	var blocks []string
	for _, a := range animations {
		var b strings.Builder
		b.WriteString("@keyframes ")
		b.WriteString(a.Name)
		b.WriteString(" {\n")
		for _, st := range a.Stages {
			b.WriteString("  ")
			b.WriteString(st.Label)
			b.WriteString(" {\n")
			writeDeclarations(&b, st.Declarations, "    ")
			b.WriteString("  }\n")
		}
		b.WriteString("}")
		blocks = append(blocks, b.String())
	}
	for _, r := range rules {
		var b strings.Builder
		b.WriteString(r.Selector)
		b.WriteString(" {\n")
		writeDeclarations(&b, r.Declarations, "  ")
		b.WriteString("}")
		blocks = append(blocks, b.String())
	}

	out := strings.TrimRight(strings.Join(blocks, "\n\n"), " \t\r\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// SheetText renders a whole style sheet.
func SheetText(s *style.Sheet) string {
	if s == nil {
		return ""
	}
	return Stylesheet(s.Rules(), s.Animations())
}

func writeDeclarations(b *strings.Builder, decls []style.Declaration, pad string) {
	for _, d := range decls {
		b.WriteString(pad)
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteString(";\n")
	}
}
