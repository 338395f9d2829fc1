// Package blame parses the incremental blame output of one file into
// attributed, dated line fragments.
package blame

import (
	"strconv"
	"strings"
)

// LineKind tags one line class of incremental blame output.
type LineKind int

// Recognized line classes. Everything else is LineOther and is skipped
// by the parser, which keeps the format forward-compatible.
const (
	LineOther LineKind = iota
	LineFragmentHeader
	LineAuthorName
	LineAuthorEmail
	LineAuthorTime
)

// Line markers of the incremental blame format.
const (
	markerAuthorName  = "author "
	markerAuthorEmail = "author-mail "
	markerAuthorTime  = "author-time "
)

// hashHexLength is the length of a hex-encoded SHA-1 commit hash.
const hashHexLength = 40

// ClassifiedLine is the tagged result of classifying one input line.
// Only the fields matching Kind are populated.
type ClassifiedLine struct {
	Kind LineKind

	// Count is the trailing line count of a fragment header.
	Count int

	// Name is the display name of an author line.
	Name string

	// Email is the address extracted from the angle brackets of an
	// author-mail line. Empty when the brackets are malformed.
	Email string

	// Timestamp is the Unix epoch seconds of an author-time line.
	Timestamp int64
}

// Classify tags a single line of incremental blame output. It holds no
// state; the parser's state machine consumes the tagged result.
func Classify(line string) ClassifiedLine {
	if count, ok := parseFragmentHeader(line); ok {
		return ClassifiedLine{Kind: LineFragmentHeader, Count: count}
	}

	if name, ok := strings.CutPrefix(line, markerAuthorName); ok {
		return ClassifiedLine{Kind: LineAuthorName, Name: strings.TrimSpace(name)}
	}

	if rest, ok := strings.CutPrefix(line, markerAuthorEmail); ok {
		return ClassifiedLine{Kind: LineAuthorEmail, Email: extractEmail(rest)}
	}

	if rest, ok := strings.CutPrefix(line, markerAuthorTime); ok {
		ts, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return ClassifiedLine{Kind: LineOther}
		}

		return ClassifiedLine{Kind: LineAuthorTime, Timestamp: ts}
	}

	return ClassifiedLine{Kind: LineOther}
}

// parseFragmentHeader recognizes "<40-hex hash> <origLine> <finalLine> <count>"
// and returns the trailing count.
func parseFragmentHeader(line string) (int, bool) {
	if len(line) < hashHexLength || !isHex(line[:hashHexLength]) {
		return 0, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields[0]) != hashHexLength {
		return 0, false
	}

	count, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || count < 0 {
		return 0, false
	}

	return count, true
}

// extractEmail pulls the address out of "<addr>". A missing or unclosed
// bracket yields the empty string, which downstream treats as the
// unattributed bucket.
func extractEmail(s string) string {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return ""
	}

	end := strings.IndexByte(s[open+1:], '>')
	if end < 0 {
		return ""
	}

	return s[open+1 : open+1+end]
}

func isHex(s string) bool {
	for i := range len(s) {
		c := s[i]
		isDigit := c >= '0' && c <= '9'
		isLower := c >= 'a' && c <= 'f'
		isUpper := c >= 'A' && c <= 'F'

		if !isDigit && !isLower && !isUpper {
			return false
		}
	}

	return true
}
