package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	// tagPattern matches one start or end tag at the beginning of a string.
	tagPattern  = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9-]*)((?:\s+[^\s"'<>/=]+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>=` + "`" + `]+))?)*)\s*/?>`)
	attrPattern = regexp.MustCompile(`\s+([^\s"'<>/=]+)(\s*=)?`)
	spaceRuns   = regexp.MustCompile(`[ \t]{2,}`)
)

// Elements that are always treated as markup, whatever follows the name.
var unsafeElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "frame": true, "frameset": true,
	"object": true, "embed": true, "svg": true, "math": true, "img": true, "a": true,
	"link": true, "meta": true, "base": true, "form": true, "input": true, "button": true,
	"textarea": true, "select": true, "video": true, "audio": true, "source": true,
	"template": true, "noscript": true,
}

const maxUnescapeRounds = 4

// SanitizeText strips all markup from model or user supplied text and returns plain text.
// Entity-escaped markup is decoded before the policy runs, so it is stripped like literal
// markup. A '<' that cannot open a tag, or that opens a harmless element written with bare
// words (as in "a<b and c>d"), is kept as text.
func SanitizeText(input string) string {
	s := input
	for i := 0; i < maxUnescapeRounds; i++ {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}

	out := html.UnescapeString(strictPolicy.Sanitize(protectLiteralLessThan(s)))
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// protectLiteralLessThan escapes every '<' that does not start markup, and every '&',
// so the policy keeps them as text.
func protectLiteralLessThan(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !startsMarkup(s[i:]) {
			b.WriteString("&lt;")
			continue
		}
		if s[i] == '&' {
			// every entity was decoded above; what is left is a literal ampersand
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func startsMarkup(s string) bool {
	if strings.HasPrefix(s, "<!") || strings.HasPrefix(s, "<?") {
		return true
	}
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if unsafeElements[strings.ToLower(m[1])] || m[2] == "" {
		return true
	}
	for _, attr := range attrPattern.FindAllStringSubmatch(m[2], -1) {
		if attr[2] != "" || strings.HasPrefix(strings.ToLower(attr[1]), "on") {
			return true
		}
	}
	return false
}
