package diffview

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML maps a Result to presentation markup: one div per line
// with a class the host stylesheet colors. Text is escaped, so
// rendering untrusted file content is safe.
func RenderHTML(r Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<div class=\"diff\" data-a=%q data-b=%q>\n", r.LabelA, r.LabelB)

	for _, line := range r.Lines {
		class := "equal"

		switch line.Op {
		case Added:
			class = "added"
		case Removed:
			class = "removed"
		case Equal:
		}

		fmt.Fprintf(&b, "<div class=\"line %s\">%s</div>\n", class, html.EscapeString(line.Text))
	}

	b.WriteString("</div>\n")

	return b.String()
}

// RenderText maps a Result to a unified-style textual diff with
// +/-/space prefixes, suitable for terminals.
func RenderText(r Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "--- %s\n+++ %s\n", r.LabelA, r.LabelB)

	for _, line := range r.Lines {
		prefix := " "

		switch line.Op {
		case Added:
			prefix = "+"
		case Removed:
			prefix = "-"
		case Equal:
		}

		b.WriteString(prefix)
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}

	return b.String()
}
