// Package prompt extracts and sanitizes the free-text prompt carried in a
// generation request before it is allowed anywhere near the upstream API.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/surjeetsr38/gyansathi-backend/internal/api/apperr"
)

// Content mirrors one item of the Gemini request's contents array.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts" validate:"omitempty,dive"`
}

type Part struct {
	Text string `json:"text"`
}

// maxRepeatRun is the longest run of one repeated character a prompt may
// contain. 99 repeats pass, 100 are rejected.
const maxRepeatRun = 99

// previewLimit caps the prompt preview kept for telemetry.
const previewLimit = 300

var scriptPattern = regexp.MustCompile(`(?i)<\s*script`)

// Join concatenates every text fragment of every part of every content item,
// in order, newline-joined and trimmed. Missing arrays yield the empty string.
func Join(contents []Content) string {
	var fragments []string
	for _, c := range contents {
		for _, p := range c.Parts {
			if p.Text != "" {
				fragments = append(fragments, p.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(fragments, "\n"))
}

// Validate runs the ordered sanitation checks against the extracted prompt
// text. The first violated rule wins; nil means the prompt is clean.
func Validate(text string, maxChars int) *apperr.AppError {
	if text == "" {
		return apperr.NewSanitizeError(apperr.CodeEmptyPrompt, "prompt text is empty")
	}
	if n := utf8.RuneCountInString(text); n > maxChars {
		return apperr.NewSanitizeError(apperr.CodePromptTooLong,
			fmt.Sprintf("prompt is %d characters, maximum is %d", n, maxChars))
	}
	if scriptPattern.MatchString(text) {
		return apperr.NewSanitizeError(apperr.CodeUnsafeInput, "prompt contains disallowed markup")
	}
	if longestRun(text) > maxRepeatRun {
		return apperr.NewSanitizeError(apperr.CodeAbusivePattern, "prompt contains excessive character repetition")
	}
	if hasDisallowedControl(text) {
		return apperr.NewSanitizeError(apperr.CodeInvalidControlChar, "prompt contains invalid control characters")
	}
	return nil
}

// Preview truncates text for telemetry storage.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit])
}

// longestRun returns the length of the longest run of a single repeated rune.
// RE2 has no backreferences, so this is a plain scan.
func longestRun(s string) int {
	var (
		prev    rune
		run     int
		longest int
	)
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// hasDisallowedControl reports whether s contains C0/C1 control characters
// other than tab, newline and carriage return.
func hasDisallowedControl(s string) bool {
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t':
			continue
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return true
		}
	}
	return false
}
