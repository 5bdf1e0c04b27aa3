package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/titlesync/internal/retitle"
)

type confirmKeys struct {
	Yes   key.Binding
	No    key.Binding
	All   key.Binding
	Abort key.Binding
}

func defaultConfirmKeys() confirmKeys {
	return confirmKeys{
		Yes:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "rename")),
		No:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		All:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "rename rest")),
		Abort: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "abort")),
	}
}

func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.All, k.Abort}
}

// Confirm asks about each planned rename in turn. Nothing is renamed by the
// model itself: after the program exits, Accepted returns the approved plans.
// Aborting discards every decision.
type Confirm struct {
	items    []retitle.Result
	accepted []bool
	cursor   int
	done     bool
	aborted  bool

	keys   confirmKeys
	help   help.Model
	styles Styles
}

// NewConfirm returns a model over the pending plans in items.
func NewConfirm(items []retitle.Result, styles Styles) Confirm {
	var pending []retitle.Result
	for _, it := range items {
		if it.Outcome == retitle.WouldRename {
			pending = append(pending, it)
		}
	}
	return Confirm{
		items:    pending,
		accepted: make([]bool, len(pending)),
		done:     len(pending) == 0,
		keys:     defaultConfirmKeys(),
		help:     help.New(),
		styles:   styles,
	}
}

func (m Confirm) Init() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return nil
}

func (m Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done || m.aborted {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.accepted[m.cursor] = true
		return m.advance()
	case key.Matches(keyMsg, m.keys.No):
		return m.advance()
	case key.Matches(keyMsg, m.keys.All):
		for i := m.cursor; i < len(m.items); i++ {
			m.accepted[i] = true
		}
		m.cursor = len(m.items)
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Abort):
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Confirm) advance() (tea.Model, tea.Cmd) {
	m.cursor++
	if m.cursor >= len(m.items) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Confirm) View() string {
	if m.done || m.aborted {
		return ""
	}

	it := m.items[m.cursor]
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Rename %d/%d", m.cursor+1, len(m.items))))
	b.WriteString("\n\n  ")
	b.WriteString(m.styles.Path.Render(it.Path))
	b.WriteString(m.styles.Arrow.Render(" → "))
	b.WriteString(m.styles.Pending.Render(it.NewPath))
	b.WriteString("\n  ")
	b.WriteString(m.styles.Dim.Render("# " + it.Heading))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	b.WriteString("\n")
	return b.String()
}

// Aborted reports whether the user quit before deciding on every rename.
func (m Confirm) Aborted() bool {
	return m.aborted
}

// Accepted returns the plans the user approved, in order.
func (m Confirm) Accepted() []retitle.Result {
	if m.aborted {
		return nil
	}
	var out []retitle.Result
	for i, ok := range m.accepted {
		if ok {
			out = append(out, m.items[i])
		}
	}
	return out
}
