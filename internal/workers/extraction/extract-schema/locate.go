// internal/workers/extraction/extract-schema/locate.go
package extractschema

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// pattern finds the array literal assigned to the marker in a piece of text.
type pattern struct {
	name string
	find func(text string) (string, bool)
}

func buildPatterns(marker string) []pattern {
	quoted := regexp.QuoteMeta(marker)
	semicolon := regexp.MustCompile(quoted + `\s*=\s*(\[[\s\S]+?\])\s*;`)
	endOfLine := regexp.MustCompile(`(?m)` + quoted + `\s*=\s*(\[[\s\S]+?\])\s*$`)

	return []pattern{
		{name: "semicolon", find: submatch(semicolon)},
		{name: "end-of-line", find: submatch(endOfLine)},
		{name: "balanced", find: func(text string) (string, bool) { return balancedLiteral(text, marker) }},
	}
}

func submatch(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		return m[1], true
	}
}

// balancedLiteral returns the bracket-balanced array after "marker =", honoring JSON strings.
func balancedLiteral(text, marker string) (string, bool) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimLeft(text[idx+len(marker):], " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if !strings.HasPrefix(rest, "[") {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[:i+1], true
			}
		}
	}
	return "", false
}

// scriptSources returns the text of every <script> element mentioning marker.
func scriptSources(doc, marker string) []string {
	var sources []string
	z := html.NewTokenizer(strings.NewReader(doc))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sources
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if inScript {
				if text := string(z.Text()); strings.Contains(text, marker) {
					sources = append(sources, text)
				}
			}
		}
	}
}
