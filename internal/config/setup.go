package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SetupResult is returned by RunSetup.
type SetupResult struct {
	VaultPath string
	Cancelled bool
}

type setupModel struct {
	input textinput.Model
	err   string
	done  bool
	quit  bool
}

func newSetupModel(placeholder string) setupModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return setupModel{input: ti}
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			path := m.value()
			if err := validateVaultPath(ExpandHome(path)); err != nil {
				m.err = err.Error()
				return m, nil
			}

			m.input.SetValue(path)
			m.done = true
			return m, tea.Quit

		case "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m setupModel) value() string {
	if v := m.input.Value(); v != "" {
		return v
	}
	return m.input.Placeholder
}

func (m setupModel) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")).
		Render("titlesync setup")

	var s string
	s += "\n " + title + "\n\n"
	s += " Vault to keep in sync:\n\n"
	s += "   " + m.input.View() + "\n\n"

	if m.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		s += " " + errStyle.Render(m.err) + "\n\n"
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	s += " " + dim.Render("Press Enter to confirm, Esc to cancel") + "\n"

	return s
}

// validateVaultPath checks that path is an existing directory. Notes are
// never created by titlesync, so a missing vault is a typo.
func validateVaultPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist", path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}
	return nil
}

// RunSetup prompts for the vault path and saves it to the config file at
// path. current is offered as the default answer.
func RunSetup(path, current string) (SetupResult, error) {
	m := newSetupModel(collapseHome(current))
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return SetupResult{}, err
	}

	fm, ok := final.(setupModel)
	if !ok {
		return SetupResult{}, fmt.Errorf("unexpected model type from setup prompt")
	}
	if fm.quit {
		return SetupResult{Cancelled: true}, nil
	}

	return Save(path, fm.value())
}

// Save validates vaultPath and writes it to the config file at path.
func Save(path, vaultPath string) (SetupResult, error) {
	expanded := ExpandHome(vaultPath)
	if err := validateVaultPath(expanded); err != nil {
		return SetupResult{}, err
	}

	if err := SaveFile(path, expanded); err != nil {
		return SetupResult{}, fmt.Errorf("saving config: %w", err)
	}
	return SetupResult{VaultPath: expanded}, nil
}
