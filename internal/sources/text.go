package sources

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// showPrefix matches "Show HN:" style markers at the start of a title
var showPrefix = regexp.MustCompile(`(?i)^\s*show\s+\w+\s*:\s*`)

// ExtractToolName derives a tool name from a post title such as
// "Show HN: Foo – a tool for bar". The name is everything before the first
// en-dash, hyphen or colon, capped at 80 characters. Titles without a
// delimiter fall back to their first 50 characters.
func ExtractToolName(title string) string {
	rest := showPrefix.ReplaceAllString(title, "")

	if i := strings.IndexAny(rest, "–-:"); i >= 0 {
		if name := strings.TrimSpace(rest[:i]); name != "" {
			return truncateRunes(name, 80)
		}
	}
	return strings.TrimSpace(truncateRunes(strings.TrimSpace(rest), 50))
}

// cleanText returns the readable text of a possibly-HTML description with
// whitespace collapsed
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
