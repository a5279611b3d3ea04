package view

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionText flattens a job description, which may contain HTML, to plain text.
// Block elements become line breaks and blank lines are collapsed.
func DescriptionText(html string) (string, error) {
	if !strings.Contains(html, "<") {
		return cleanWhitespace(html), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse description HTML: %w", err)
	}

	var sb strings.Builder
	writeText(&sb, doc.Find("body"))
	return cleanWhitespace(sb.String()), nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "section": true,
}

func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			sb.WriteString(c.Text())
		case name == "br":
			sb.WriteString("\n")
		case name == "script" || name == "style" || name == "noscript":
		case blockElements[name]:
			sb.WriteString("\n")
			if name == "li" {
				sb.WriteString("• ")
			}
			writeText(sb, c)
			sb.WriteString("\n")
		default:
			writeText(sb, c)
		}
	})
}

// cleanWhitespace trims every line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
