package detector

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const unknownShell = "unknown"

// Host is the execution environment a generated command will run in.
type Host struct {
	OS    string `json:"os"`
	Arch  string `json:"arch"`
	Shell string `json:"shell"`
}

func DetectHost() Host {
	return Host{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: detectActiveShell(os.Getenv("SHELL")),
	}
}

func detectActiveShell(shellPath string) string {
	trimmed := strings.TrimSpace(shellPath)
	if trimmed == "" {
		return unknownShell
	}
	return filepath.Base(trimmed)
}
