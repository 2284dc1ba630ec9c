package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/shellpilot/internal/domain"
)

// RenderAskResponse prints the pipeline result in a plain ASCII format.
func RenderAskResponse(out io.Writer, resp domain.AskResponse, showAlternatives bool) {
	if len(resp.Candidates) == 0 {
		return
	}
	primary := resp.Primary()

	fmt.Fprintln(out, "Command:")
	fmt.Fprintf(out, "  %s\n", primary.Text)
	if primary.Explanation != "" {
		fmt.Fprintf(out, "  (%s)\n", primary.Explanation)
	}
	fmt.Fprintf(out, "Source: %s", primary.Source)
	if resp.FromCache {
		fmt.Fprint(out, " (cached)")
	}
	fmt.Fprintln(out)

	renderVerdict(out, primary.Verdict)

	if showAlternatives && len(resp.Candidates) > 1 {
		fmt.Fprintln(out, "\nAlternatives:")
		for _, c := range resp.Candidates[1:] {
			fmt.Fprintf(out, "  %-8s %s\n", "["+string(c.Verdict.Level)+"]", c.Text)
		}
	}

	renderExecution(out, resp)
}

func renderVerdict(out io.Writer, v domain.SafetyVerdict) {
	fmt.Fprintf(out, "Safety: %s", strings.ToUpper(string(v.Level)))
	if v.Rationale != "" {
		fmt.Fprintf(out, " - %s", v.Rationale)
	}
	fmt.Fprintln(out)
	if v.SuggestedAlternative != "" {
		fmt.Fprintf(out, "Safer alternative:\n  %s\n", v.SuggestedAlternative)
	}
}

func renderExecution(out io.Writer, resp domain.AskResponse) {
	result := resp.ExecutionResult
	if result == nil {
		return
	}
	if !result.Ran {
		if result.Err != nil {
			fmt.Fprintf(out, "\nNot executed: %v\n", result.Err)
		} else {
			fmt.Fprintln(out, "\nNot executed.")
		}
		return
	}
	if result.Stdout != "" {
		fmt.Fprint(out, result.Stdout)
		if !strings.HasSuffix(result.Stdout, "\n") {
			fmt.Fprintln(out)
		}
	}
	if result.Stderr != "" {
		fmt.Fprint(out, result.Stderr)
		if !strings.HasSuffix(result.Stderr, "\n") {
			fmt.Fprintln(out)
		}
	}
	if result.ExitCode != 0 {
		fmt.Fprintf(out, "exit status %d\n", result.ExitCode)
	}
}

// RenderExplainResponse prints the verdict for literal command text.
func RenderExplainResponse(out io.Writer, resp domain.ExplainResponse) {
	fmt.Fprintln(out, "Command:")
	fmt.Fprintf(out, "  %s\n", resp.Command)
	renderVerdict(out, resp.Verdict)
	if resp.Explanation != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(resp.Explanation))
	}
}
