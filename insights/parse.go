package insights

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bullet is one parsed line of generated text.
type Bullet struct {
	Text      string `json:"text"`
	IsCaution bool   `json:"isCaution"`
}

var cautionKeywords = []string{"limit", "limitation", "limited", "insufficient", "caution"}

// ParseBullets splits generated text into bullets. Lines keep their order; blank
// lines are dropped and the count is not checked.
func ParseBullets(text string) []Bullet {
	bullets := make([]Bullet, 0, 5)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = stripMarker(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		bullets = append(bullets, Bullet{Text: line, IsCaution: IsCaution(line)})
	}
	return bullets
}

// IsCaution reports whether text reads as a caveat rather than a finding.
func IsCaution(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range cautionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// stripMarker removes a list marker only when whitespace or the end of the line follows it,
// so "-5%" and "**bold**" keep their leading characters.
func stripMarker(line string) string {
	for _, marker := range []string{"-", "•", "*"} {
		rest, ok := strings.CutPrefix(line, marker)
		if !ok {
			continue
		}
		if rest == "" {
			return ""
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
			return strings.TrimSpace(rest)
		}
		return line
	}
	return line
}
