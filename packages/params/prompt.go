package params

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
)

// Prompt describes one interactive question.
type Prompt struct {
	Name        string
	Description string
	Default     string
	Validate    func(string) error
}

// Prompter asks the user for values.
type Prompter interface {
	Input(p Prompt) (string, error)
	Password(p Prompt) (string, error)
}

// ErrNoTerminal is returned when a prompt is needed but stdin is not a terminal.
var ErrNoTerminal = errors.New("input is required but stdin is not a terminal, pass it with -p name:value")

// TerminalPrompter prompts on the terminal with huh forms.
type TerminalPrompter struct {
	// IsTerminal reports whether stdin is interactive. Defaults to an isatty check.
	IsTerminal func() bool
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{IsTerminal: StdinIsTerminal}
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *TerminalPrompter) Input(p Prompt) (string, error) {
	return t.run(p, false)
}

func (t *TerminalPrompter) Password(p Prompt) (string, error) {
	return t.run(p, true)
}

func (t *TerminalPrompter) run(p Prompt, password bool) (string, error) {
	if t.IsTerminal != nil && !t.IsTerminal() {
		return "", errdef.Parameter(p.Name, ErrNoTerminal)
	}

	value := p.Default
	input := huh.NewInput().
		Title(p.Name).
		Value(&value)
	if p.Description != "" {
		input = input.Description(p.Description)
	}
	if password {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if p.Validate != nil {
		input = input.Validate(p.Validate)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errdef.Parameter(p.Name, errors.New("aborted"))
		}
		return "", errdef.Parameter(p.Name, err)
	}
	return value, nil
}
