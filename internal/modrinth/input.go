package modrinth

import (
	"regexp"
	"strings"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// commentDelimiter matches the separators allowed between a URL and its
// trailing comment: an em-dash or a hash surrounded by whitespace, or a
// run of two or more whitespace characters.
const commentDelimiter = `\s+—\s+|\s+#\s+|\s{2,}`

var (
	lineRe      = regexp.MustCompile(`^(\S+?)(?:` + commentDelimiter + `)(.+)$`)
	delimiterRe = regexp.MustCompile(commentDelimiter)
)

// ParseInput splits free text into input lines.
//
// Lines are trimmed and blank lines are dropped; the order of the
// remaining lines is preserved.
func ParseInput(text string) []model.InputLine {
	var lines []model.InputLine
	for _, raw := range strings.Split(text, "\n") {
		if line, ok := ParseLine(raw); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseLine parses one line of input. It returns false for a blank line.
//
// Example:
//
//	line, _ := ParseLine("https://modrinth.com/fabric-api — core lib")
//	// line.RawURL = "https://modrinth.com/fabric-api"
//	// line.Comment = "core lib"
func ParseLine(raw string) (model.InputLine, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.InputLine{}, false
	}

	if m := lineRe.FindStringSubmatch(raw); m != nil {
		return model.InputLine{RawURL: m[1], Comment: strings.TrimSpace(m[2])}, true
	}
	return model.InputLine{RawURL: raw}, true
}

// stripComment removes a trailing comment and returns the first
// whitespace-delimited token of what is left.
func stripComment(raw string) string {
	cleaned := strings.TrimSpace(delimiterRe.Split(raw, 2)[0])
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
