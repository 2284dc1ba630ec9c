package contextsnapshot

import (
	"context"
	"os"
	"testing"

	"github.com/doeshing/shellpilot/internal/domain"
)

func TestBuildNeverFails(t *testing.T) {
	builder := NewBuilder()
	snapshot := builder.Build(context.Background())

	if snapshot.WorkingDir == "" {
		t.Fatal("working directory should always be set")
	}
	if snapshot.OSFamily == "" {
		t.Fatal("OS family should always be set")
	}
	for _, tool := range snapshot.AvailableTools {
		if tool == "" {
			t.Fatal("detected tool names must be non-empty")
		}
	}
}

func TestBuildOutsideGitRepository(t *testing.T) {
	tmp := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}

	snapshot := NewBuilder().Build(context.Background())
	if snapshot.Git != nil {
		t.Fatalf("expected no git state outside a repository, got %+v", snapshot.Git)
	}
}

func TestDetectShellFromEnvironment(t *testing.T) {
	tests := []struct {
		env  string
		want domain.ShellKind
	}{
		{"/bin/bash", domain.ShellBash},
		{"/usr/bin/zsh", domain.ShellZsh},
		{"/usr/local/bin/fish", domain.ShellFish},
		{"/bin/dash", domain.ShellUnknown},
		{"", domain.ShellUnknown},
	}
	for _, tt := range tests {
		t.Setenv("SHELL", tt.env)
		if got := detectShell(); got != tt.want {
			t.Fatalf("detectShell with SHELL=%q = %s, want %s", tt.env, got, tt.want)
		}
	}
}

func TestHasTool(t *testing.T) {
	snapshot := domain.ContextSnapshot{AvailableTools: []string{"docker", "git"}}
	if !snapshot.HasTool("git") {
		t.Fatal("expected git to be reported")
	}
	if snapshot.HasTool("kubectl") {
		t.Fatal("kubectl was not detected")
	}
}
