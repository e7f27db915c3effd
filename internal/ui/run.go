package ui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
)

// Run starts the program and blocks until the user quits. Extra options
// (custom IO, fixed window size) pass through to tea.NewProgram.
func Run(opts Options, progOpts ...tea.ProgramOption) (*Model, error) {
	m, err := New(opts)
	if err != nil {
		return nil, err
	}
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return m, fmt.Errorf("run tui: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, nil
	}
	return m, nil
}
