package domain

// OSFamily classifies the host operating system for template selection.
type OSFamily string

const (
	OSLinux   OSFamily = "linux"
	OSDarwin  OSFamily = "darwin"
	OSWindows OSFamily = "windows"
	OSUnknown OSFamily = "unknown"
)

// Unixlike reports whether generic Unix templates apply.
func (f OSFamily) Unixlike() bool {
	return f == OSLinux || f == OSDarwin
}

// ShellKind enumerates detected shells.
type ShellKind string

const (
	ShellUnknown    ShellKind = "unknown"
	ShellBash       ShellKind = "bash"
	ShellZsh        ShellKind = "zsh"
	ShellFish       ShellKind = "fish"
	ShellPowerShell ShellKind = "powershell"
)

// GitState captures repository facts for the current directory. Absent
// (nil pointer in ContextSnapshot) when the directory is not a repository.
type GitState struct {
	Branch string
	Dirty  bool
}

// ContextSnapshot holds read-only environment facts collected once per
// invocation. It is owned by the orchestrator for the invocation's lifetime
// and never shared across concurrent invocations.
type ContextSnapshot struct {
	WorkingDir     string
	OSFamily       OSFamily
	Shell          ShellKind
	Git            *GitState
	AvailableTools []string
}

// HasTool reports whether a tool was detected on PATH (best-effort).
func (s ContextSnapshot) HasTool(name string) bool {
	for _, tool := range s.AvailableTools {
		if tool == name {
			return true
		}
	}
	return false
}
