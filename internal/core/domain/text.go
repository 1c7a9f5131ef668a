package domain

// TruncationMarker is appended to content cut at the summariser input
// limit, so the model knows the text is incomplete.
const TruncationMarker = "\n\n[content truncated]"

// TruncateForSummary enforces the summariser input policy: content longer
// than maxRunes is cut at maxRunes runes and TruncationMarker is appended.
// Deterministic for a given content and limit. Non-positive limits leave
// the content untouched.
func TruncateForSummary(content string, maxRunes int) string {
	if maxRunes <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + TruncationMarker
}
