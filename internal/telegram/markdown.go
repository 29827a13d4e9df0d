package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage cuts text into parts of at most maxLen runes. A cut prefers a
// blank line, then a line break, as long as it falls in the second half of
// the part.
func SplitMessage(text string, maxLen int) []string {
	var parts []string
	for utf8.RuneCountInString(text) > maxLen {
		runes := []rune(text)
		cut := cutPoint(string(runes[:maxLen]), maxLen)
		parts = append(parts, string(runes[:cut]))
		text = string(runes[cut:])
	}
	return append(parts, text)
}

func cutPoint(window string, maxLen int) int {
	for _, sep := range []string{"\n\n", "\n"} {
		i := strings.LastIndex(window, sep)
		if i < 0 {
			continue
		}
		if at := utf8.RuneCountInString(window[:i]) + len(sep); at > maxLen/2 {
			return at
		}
	}
	return maxLen
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes user-supplied text for legacy Markdown.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// FixMarkdown closes legacy Markdown entities left open: code fences, inline
// code, bold and italic. Escaped markers and markers inside code are ignored.
func FixMarkdown(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		text += "\n```"
	}

	var fence, code, bold, italic bool
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case !code && isFence(runes, i):
			fence = !fence
			i += 2
		case fence:
		case r == '`':
			code = !code
		case code:
		case r == '\\':
			i++
		case r == '*':
			bold = !bold
		case r == '_':
			italic = !italic
		}
	}

	var sb strings.Builder
	sb.WriteString(text)
	if code {
		sb.WriteByte('`')
	}
	if italic {
		sb.WriteByte('_')
	}
	if bold {
		sb.WriteByte('*')
	}
	return sb.String()
}

func isFence(runes []rune, i int) bool {
	return i+2 < len(runes) && runes[i] == '`' && runes[i+1] == '`' && runes[i+2] == '`'
}
