package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Prompter implements ConfirmationPrompter over stdio. Dangerous commands
// require typing the word yes; Cautious ones accept y/N.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter builds a prompter on the given streams. Passing nil uses
// stdin/stdout and TTY detection; tests pass buffers and force
// interactive mode.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled reports whether a confirmation can actually be collected.
// Piped stdin means no: the gate then skips execution instead of hanging.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks the user to approve a risky command.
func (p *Prompter) Confirm(candidate domain.ClassifiedCandidate) (bool, error) {
	fmt.Fprintf(p.out, "\n[%s] %s\n", strings.ToUpper(string(candidate.Verdict.Level)), candidate.Verdict.Rationale)
	fmt.Fprintf(p.out, "Command:\n  %s\n", candidate.Text)
	if alt := candidate.Verdict.SuggestedAlternative; alt != "" {
		fmt.Fprintf(p.out, "Safer alternative:\n  %s\n", alt)
	}

	if candidate.Verdict.Level == domain.SafetyDangerous {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Run it? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to run (anything else cancels): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
