package ui

import (
	"fmt"
	"strings"

	"github.com/pfassina/titlesync/internal/retitle"
)

// Notice renders one result as a single line: the note path followed by
// the outcome message.
func (s Styles) Notice(res retitle.Result) string {
	return s.Path.Render(res.Path) + s.Arrow.Render(": ") + s.For(res.Outcome).Render(res.Message())
}

// Summary counts results by outcome, e.g. "2 renamed, 1 collision".
// Outcomes with no results are left out.
func (s Styles) Summary(results []retitle.Result) string {
	counts := make(map[retitle.Outcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}

	var parts []string
	for _, o := range retitle.Outcomes() {
		if n := counts[o]; n > 0 {
			parts = append(parts, s.For(o).Render(fmt.Sprintf("%d %s", n, o)))
		}
	}
	if len(parts) == 0 {
		return s.Dim.Render("no notes")
	}
	return strings.Join(parts, s.Dim.Render(", "))
}
