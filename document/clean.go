package document

import (
	"regexp"
	"strings"
)

var (
	cssBlockRegex = regexp.MustCompile(`(?s)<style[^>]*>.*?</style>`)
	jsBlockRegex  = regexp.MustCompile(`(?s)<script[^>]*>.*?</script>`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)

	htmlEntityRegex = regexp.MustCompile(`&[a-zA-Z0-9#]*;`)

	// Control characters, except tab and newline which the layout needs.
	controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f-\x9f]`)

	blankRunRegex  = regexp.MustCompile(`\n{3,}`)
	spaceRunRegex  = regexp.MustCompile(`[ \t]{2,}`)
	trailingWSLine = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Clean normalizes extracted text for display: control characters dropped,
// horizontal whitespace runs collapsed, blank-line runs capped at one blank
// line. Unlike a search-only cleaner it preserves newlines, since the page
// layout wraps around them.
func Clean(content string) string {
	content = controlCharRegex.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = spaceRunRegex.ReplaceAllString(content, " ")
	content = trailingWSLine.ReplaceAllString(content, "")
	content = blankRunRegex.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// stripTags removes HTML/XML markup: script and style blocks first, then
// tags, then a simple pass of entity decoding.
func stripTags(markup string) string {
	text := cssBlockRegex.ReplaceAllString(markup, "")
	text = jsBlockRegex.ReplaceAllString(text, "")
	text = htmlTagRegex.ReplaceAllString(text, " ")
	text = htmlEntityRegex.ReplaceAllStringFunc(text, func(entity string) string {
		switch entity {
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return "\""
		case "&apos;", "&#39;":
			return "'"
		case "&nbsp;":
			return " "
		default:
			return " "
		}
	})
	return strings.TrimSpace(text)
}
