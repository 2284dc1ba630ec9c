// Package cli wires the cobra command tree over the application services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/shellpilot/internal/app"
	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. Bare arguments are treated as
// a natural-language request, so `shellpilot list files` works without
// naming the ask subcommand.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.AskService.Prompter = NewPrompter(nil, nil)

	askCmd := newAskCommand(container)

	root := &cobra.Command{
		Use:   "shellpilot [request]",
		Short: "Turn natural language into shell commands",
		Long:  "shellpilot converts natural-language requests into shell commands,\nclassifies their risk and only executes with your confirmation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetArgs(args)
			return askCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(askCmd)
	root.AddCommand(newExplainCommand(container))
	root.AddCommand(newInteractiveCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewCacheCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}

func newAskCommand(container *app.Container) *cobra.Command {
	var (
		execute      bool
		alternatives bool
		debug        bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [natural language]",
		Short: "Generate a command from natural language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			resp, err := container.AskService.Run(domain.AskRequest{
				Context:      ctx,
				Input:        strings.Join(args, " "),
				Execute:      execute,
				Alternatives: alternatives,
				Debug:        debug,
			})
			RenderAskResponse(cmd.OutOrStdout(), resp, alternatives)
			return err
		},
	}

	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "Execute the command after confirmation")
	cmd.Flags().BoolVarP(&alternatives, "alternatives", "a", false, "Show lower-ranked candidates")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable verbose logging")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Overall request timeout")

	return cmd
}

func newExplainCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <command>",
		Short: "Classify and explain a literal shell command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := container.ExplainService.Run(domain.ExplainRequest{
				Context: cmd.Context(),
				Command: strings.Join(args, " "),
			})
			RenderExplainResponse(cmd.OutOrStdout(), resp)
			return err
		},
	}
}

func newInteractiveCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive request loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

// runInteractive loops over stdin requests until exit/quit or EOF. Errors
// from a single request are reported and the loop continues; a denied or
// unmatched request never ends the session.
func runInteractive(ctx context.Context, out io.Writer, container *app.Container) error {
	fmt.Fprintln(out, "shellpilot interactive mode. Type 'exit' or 'quit' to leave.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit", line == "quit":
			return nil
		}

		resp, err := container.AskService.Run(domain.AskRequest{
			Context: ctx,
			Input:   line,
			Execute: true,
		})
		RenderAskResponse(out, resp, true)
		if err != nil {
			var forbidden *domain.ForbiddenError
			var noCandidate *domain.NoCandidateError
			switch {
			case errors.As(err, &forbidden):
				fmt.Fprintf(out, "Denied: %s\n", forbidden.Rationale)
			case errors.As(err, &noCandidate):
				fmt.Fprintf(out, "No command found for %q.\n", noCandidate.Input)
			default:
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}
