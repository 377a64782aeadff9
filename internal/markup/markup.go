// Package markup renders the analysis model's answer text as HTML.
//
// The grammar is a frozen three-rule subset: "---" horizontal rules,
// "**bold**" spans and "* " bullet lines. Blank lines separate paragraphs;
// everything else is a plain paragraph. It is deliberately not a general
// markdown interpreter.
package markup

import (
	"html/template"
	"regexp"
	"strings"
)

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Render converts model output text into safe HTML. Input is escaped
// before the bold substitution, so model text cannot inject markup.
func Render(text string) template.HTML {
	var b strings.Builder
	lines := strings.Split(text, "\n")

	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			closeList()
		case line == "---":
			closeList()
			b.WriteString("<hr>\n")
		case strings.HasPrefix(line, "* "):
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			b.WriteString("<li>" + inline(strings.TrimPrefix(line, "* ")) + "</li>\n")
		default:
			closeList()
			b.WriteString("<p>" + inline(line) + "</p>\n")
		}
	}
	closeList()

	return template.HTML(b.String())
}

func inline(s string) string {
	escaped := template.HTMLEscapeString(s)
	return boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
}
