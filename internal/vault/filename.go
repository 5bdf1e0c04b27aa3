package vault

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFilenameLen is the byte cap on a generated filename, excluding ".md".
const MaxFilenameLen = 200

// blank is the whitespace class shared by every stage. RE2's \s is ASCII-only,
// so the Unicode separators are spelled out to match isBlank.
const blank = `[\t\n\v\f\r \x{85}\p{Z}\x{FEFF}]`

// stage is a single rewrite in the filename pipeline.
type stage struct {
	name  string
	apply func(string) string
}

func rewrite(name, pattern, repl string) stage {
	re := regexp.MustCompile(pattern)
	return stage{name: name, apply: func(s string) string {
		return re.ReplaceAllString(s, repl)
	}}
}

// stages run strictly in order: markup must be gone before reserved
// characters become dashes, and collapsing assumes both already ran.
var stages = []stage{
	rewrite("wikilink-alias", `\[\[[^\]|]+\|([^\]]+)\]\]`, "$1"),
	rewrite("wikilink", `\[\[([^\]]+)\]\]`, "$1"),
	rewrite("link", `\[([^\]]+)\]\([^)]+\)`, "$1"),
	rewrite("bold-star", `\*\*([^*]+)\*\*`, "$1"),
	rewrite("bold-underscore", `__([^_]+)__`, "$1"),
	rewrite("italic-star", `\*([^*]+)\*`, "$1"),
	rewrite("italic-underscore", `_([^_]+)_`, "$1"),
	rewrite("code", "`([^`]+)`", "$1"),
	rewrite("strikethrough", `~~([^~]+)~~`, "$1"),
	rewrite("highlight", `==([^=]+)==`, "$1"),

	rewrite("reserved", `[*"\\/<>:|?#^\[\]]`, "-"),

	rewrite("collapse-space", blank+`+`, " "),
	rewrite("collapse-dash", `-{2,}`, "-"),
	rewrite("drop-spaced-dash", ` (?:- )+`, " "),

	{name: "trim", apply: trimSeparators},
	{name: "truncate", apply: truncate},
}

// Filename converts a heading into a filesystem-safe note name.
// The result may be empty when nothing survives normalization.
func Filename(title string) string {
	s := title
	for _, st := range stages {
		s = st.apply(s)
	}
	return s
}

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isSeparator(r rune) bool {
	return r == '-' || isBlank(r)
}

func trimSeparators(s string) string {
	return strings.TrimFunc(s, isSeparator)
}

// truncate cuts s to MaxFilenameLen bytes without splitting a rune and drops
// any separator left dangling at the new end. Invalid UTF-8 is cut at most
// utf8.UTFMax-1 bytes short.
func truncate(s string) string {
	if len(s) <= MaxFilenameLen {
		return s
	}
	cut := MaxFilenameLen
	for cut > MaxFilenameLen-(utf8.UTFMax-1) && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRightFunc(s[:cut], isSeparator)
}
