package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// maxPromptChars bounds how much of one source reaches the prompt. The
// synthesizer already caps completion tokens; this keeps the request side
// from blowing the context window on a large crawl.
const maxPromptChars = 24000

// CleanText normalizes scraped or extracted text: collapses runs of
// whitespace, drops very short boilerplate-looking lines, and trims the
// result to a prompt-safe size.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if isBoilerplateLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	s = strings.Join(kept, "\n")
	s = newlineRe.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	return truncateUTF8(s, maxPromptChars)
}

func isBoilerplateLine(line string) bool {
	if line == "" {
		return false
	}
	// Single-character bullets, separators, cookie-banner leftovers.
	if utf8.RuneCountInString(line) <= 1 {
		return true
	}
	lower := strings.ToLower(line)
	switch lower {
	case "accept cookies", "accept all cookies", "skip to content", "skip to main content", "menu", "search":
		return true
	}
	return false
}

func truncateUTF8(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	if i := strings.LastIndexByte(cut, '\n'); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
