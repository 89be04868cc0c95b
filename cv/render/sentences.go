package render

import "strings"

// splitSentences breaks a role description into bullet sentences on ". ".
// Each piece is trimmed, empty pieces are dropped and a missing final period
// is restored.
func splitSentences(text string) []string {
	parts := strings.Split(text, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, ".") {
			p += "."
		}
		out = append(out, p)
	}
	return out
}
