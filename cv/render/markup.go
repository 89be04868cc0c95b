package render

import (
	"html"
	"strings"
)

// esc makes free text safe for paragraph markup. Every reserved character is
// entity-encoded, so user content can never open or close a tag.
func esc(s string) string {
	return html.EscapeString(s)
}

func bold(s string) string {
	return "<b>" + s + "</b>"
}

// run is a span of text with a single font weight.
type run struct {
	text string
	bold bool
}

// parseMarkup splits paragraph markup into runs. <b> and </b> are the only
// tags; entities in the text are decoded.
func parseMarkup(markup string) []run {
	var (
		runs   []run
		isBold bool
		rest   = markup
	)
	emit := func(seg string) {
		if seg == "" {
			return
		}
		text := html.UnescapeString(seg)
		if n := len(runs); n > 0 && runs[n-1].bold == isBold {
			runs[n-1].text += text
			return
		}
		runs = append(runs, run{text: text, bold: isBold})
	}
	for rest != "" {
		i := strings.IndexByte(rest, '<')
		if i < 0 {
			emit(rest)
			break
		}
		emit(rest[:i])
		rest = rest[i:]
		switch {
		case strings.HasPrefix(rest, "<b>"):
			isBold = true
			rest = rest[len("<b>"):]
		case strings.HasPrefix(rest, "</b>"):
			isBold = false
			rest = rest[len("</b>"):]
		default:
			// a stray '<' is printed as is
			emit("<")
			rest = rest[1:]
		}
	}
	return runs
}

// plainText flattens runs back into a single string.
func plainText(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.text)
	}
	return b.String()
}
