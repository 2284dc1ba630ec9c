// Package contextsnapshot collects read-only environment facts used by the
// generation pipeline. Each sub-probe is independently fallible and bounded
// by a short timeout; a failing probe degrades its field to unknown/absent
// and Build never fails as a whole.
package contextsnapshot

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Builder implements the ContextBuilder port.
type Builder struct {
	toolsToCheck []string
}

// NewBuilder returns a builder probing for the common tool set.
func NewBuilder() *Builder {
	return &Builder{
		toolsToCheck: []string{
			"apt", "brew", "cargo", "curl", "docker", "git", "go",
			"kubectl", "make", "node", "npm", "pip", "python3", "yarn",
		},
	}
}

// Build implements ports.ContextBuilder.
func (b *Builder) Build(ctx context.Context) domain.ContextSnapshot {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	snapshot := domain.ContextSnapshot{
		WorkingDir:     wd,
		OSFamily:       detectOSFamily(),
		Shell:          detectShell(),
		AvailableTools: b.detectTools(),
	}
	snapshot.Git = probeGit(ctx, wd)
	return snapshot
}

func detectOSFamily() domain.OSFamily {
	switch runtime.GOOS {
	case "linux":
		return domain.OSLinux
	case "darwin":
		return domain.OSDarwin
	case "windows":
		return domain.OSWindows
	default:
		return domain.OSUnknown
	}
}

func detectShell() domain.ShellKind {
	if runtime.GOOS == "windows" {
		return domain.ShellPowerShell
	}
	switch filepath.Base(os.Getenv("SHELL")) {
	case "bash":
		return domain.ShellBash
	case "zsh":
		return domain.ShellZsh
	case "fish":
		return domain.ShellFish
	default:
		return domain.ShellUnknown
	}
}

func (b *Builder) detectTools() []string {
	var available []string
	for _, tool := range b.toolsToCheck {
		if _, err := exec.LookPath(tool); err == nil {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available
}

// probeGit returns nil when the directory is not a repository or the
// probe fails or times out.
func probeGit(ctx context.Context, dir string) *domain.GitState {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil
	}
	branch := runCmd(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if branch == "" {
		return nil
	}
	status := runCmd(ctx, dir, "git", "status", "--porcelain")
	return &domain.GitState{
		Branch: branch,
		Dirty:  status != "",
	}
}

func runCmd(ctx context.Context, dir string, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()
	cmd := exec.CommandContext(cctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

var _ ports.ContextBuilder = (*Builder)(nil)
