package ai

import (
	"fmt"
	"strings"

	"github.com/doeshing/shellpilot/internal/domain"
)

func commandMessages(model domain.ModelDefinition, input string, snapshot domain.ContextSnapshot) []domain.PromptMessage {
	system := systemPrompt(model, snapshot)

	var user strings.Builder
	user.WriteString("User request:\n")
	user.WriteString(input)
	user.WriteString("\n\nContext:\n")
	writeContext(&user, snapshot)
	user.WriteString("\nReturn ONLY the shell command inside a fenced code block, followed by a one-line explanation.")

	return []domain.PromptMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user.String()},
	}
}

func explainMessages(model domain.ModelDefinition, commandText string, snapshot domain.ContextSnapshot) []domain.PromptMessage {
	var user strings.Builder
	fmt.Fprintf(&user, "Explain what this shell command does, flag by flag, and any risks:\n\n  %s\n\nContext:\n", commandText)
	writeContext(&user, snapshot)
	user.WriteString("\nKeep it concise.")

	return []domain.PromptMessage{
		{Role: "system", Content: systemPrompt(model, snapshot)},
		{Role: "user", Content: user.String()},
	}
}

func systemPrompt(model domain.ModelDefinition, snapshot domain.ContextSnapshot) string {
	if len(model.Prompt) > 0 {
		var builder strings.Builder
		for _, msg := range model.Prompt {
			if msg.Role == "system" {
				builder.WriteString(msg.Content)
				builder.WriteString("\n")
			}
		}
		return builder.String()
	}
	return fmt.Sprintf("You are shellpilot, a cautious shell assistant generating %s commands. Never suggest destructive commands without warning.", snapshot.OSFamily)
}

func writeContext(builder *strings.Builder, snapshot domain.ContextSnapshot) {
	fmt.Fprintf(builder, "- Directory: %s\n", snapshot.WorkingDir)
	fmt.Fprintf(builder, "- OS: %s\n", snapshot.OSFamily)
	fmt.Fprintf(builder, "- Shell: %s\n", snapshot.Shell)
	if len(snapshot.AvailableTools) > 0 {
		fmt.Fprintf(builder, "- Tools: %s\n", strings.Join(snapshot.AvailableTools, ", "))
	}
	if snapshot.Git != nil {
		fmt.Fprintf(builder, "- Git: branch %s, dirty=%t\n", snapshot.Git.Branch, snapshot.Git.Dirty)
	}
}

// extractCommand pulls the command out of a fenced block when present,
// otherwise falls back to a "command:" prefixed line or the raw content.
func extractCommand(content string) string {
	if strings.Contains(content, "```") {
		start := strings.Index(content, "```")
		suffix := content[start+3:]
		if end := strings.Index(suffix, "```"); end != -1 {
			block := suffix[:end]
			lines := strings.Split(block, "\n")
			if len(lines) > 0 && isFenceLanguage(lines[0]) {
				lines = lines[1:]
			}
			return strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return strings.TrimSpace(firstLine(content))
}

func explanationFrom(content string, command string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == command || strings.HasPrefix(line, "```") {
			continue
		}
		if strings.Contains(line, command) {
			continue
		}
		return line
	}
	return "Generated by the AI provider"
}

func isFenceLanguage(line string) bool {
	switch strings.TrimSpace(line) {
	case "sh", "bash", "shell", "zsh", "console", "powershell":
		return true
	default:
		return false
	}
}

func firstLine(content string) string {
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return content[:idx]
	}
	return content
}
