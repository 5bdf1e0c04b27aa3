package markdown

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter represents YAML frontmatter.
type Frontmatter struct {
	Fields map[string]any
}

// ExtractFrontmatter parses YAML frontmatter from markdown content.
// The block must open with --- on the first line and close with --- or ...
// It returns nil for missing, unclosed or non-mapping frontmatter.
func ExtractFrontmatter(content []byte) *Frontmatter {
	lines := splitLines(content)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if isFrontmatterClose(strings.TrimSpace(lines[i])) {
			end = i
			break
		}
	}
	if end == -1 {
		return nil // unclosed frontmatter
	}

	fields := make(map[string]any)
	body := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(body), &fields); err != nil {
		return nil
	}

	return &Frontmatter{Fields: fields}
}

// Bool reports the boolean value of key. Strings such as "off" or "no" are
// accepted alongside YAML booleans. The second value is false when the key
// is absent or not boolean-like.
func (fm *Frontmatter) Bool(key string) (bool, bool) {
	if fm == nil {
		return false, false
	}
	switch v := fm.Fields[key].(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "yes":
			return true, true
		case "off", "no":
			return false, true
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}
