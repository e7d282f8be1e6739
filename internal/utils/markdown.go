package utils

import "regexp"

// Rendered list text uses a minimal markdown dialect; the substitution order
// matters (bold before italic, since "**" contains "*").
var (
	boldStars       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldUnderscores = regexp.MustCompile(`__(.*?)__`)
	italicStar      = regexp.MustCompile(`\*(.*?)\*`)
	italicUnder     = regexp.MustCompile(`_(.*?)_`)
	strikethrough   = regexp.MustCompile(`~~(.*?)~~`)
	underline       = regexp.MustCompile(`\+\+(.*?)\+\+`)
)

// MarkdownToHTML converts the minimal markdown markers of rendered list text
// (bold, italic, strikethrough, underline) into HTML tags
func MarkdownToHTML(text string) string {
	text = boldStars.ReplaceAllString(text, "<strong>$1</strong>")
	text = boldUnderscores.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicStar.ReplaceAllString(text, "<em>$1</em>")
	text = italicUnder.ReplaceAllString(text, "<em>$1</em>")
	text = strikethrough.ReplaceAllString(text, "<del>$1</del>")
	text = underline.ReplaceAllString(text, "<u>$1</u>")
	return text
}
