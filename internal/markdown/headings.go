package markdown

import (
	"regexp"
	"strings"
)

// scanState is the lexical state of the line scanner.
type scanState int

const (
	stateBody scanState = iota
	stateFrontmatter
	stateCodeBlock
)

// h1Pattern matches exactly one # followed by whitespace and content.
var h1Pattern = regexp.MustCompile(`^#[\t\n\v\f\r \x{85}\p{Z}\x{FEFF}]+(.+)$`)

// step advances the scanner by one line. It returns the next state and
// whether the line is a heading candidate.
func (s scanState) step(index int, trimmed string) (scanState, bool) {
	switch s {
	case stateFrontmatter:
		if isFrontmatterClose(trimmed) {
			return stateBody, false
		}
		return stateFrontmatter, false
	case stateCodeBlock:
		if isFence(trimmed) {
			return stateBody, false
		}
		return stateCodeBlock, false
	}

	// Frontmatter can only open on the first line.
	if index == 0 && trimmed == "---" {
		return stateFrontmatter, false
	}
	if isFence(trimmed) {
		return stateCodeBlock, false
	}
	return stateBody, true
}

// ExtractFirstHeading returns the text of the first H1 heading in content,
// skipping frontmatter and fenced code blocks. Inline markup is kept as-is.
// The second return value is false when no H1 exists.
func ExtractFirstHeading(content []byte) (string, bool) {
	state := stateBody

	for i, line := range splitLines(content) {
		var candidate bool
		state, candidate = state.step(i, strings.TrimSpace(line))
		if !candidate {
			continue
		}

		m := h1Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text == "" {
			// "#   " is still the first H1; it just has no title.
			return "", false
		}
		return text, true
	}

	return "", false
}

func isFence(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func isFrontmatterClose(trimmed string) bool {
	return trimmed == "---" || trimmed == "..."
}

// splitLines splits content on \n and drops a trailing \r from each line.
func splitLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
