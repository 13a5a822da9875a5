package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRun_NonInteractiveSkips(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	runner := &Runner{Stdout: &stdout, Stderr: &stdout, Interactive: false}

	result, runError := runner.Run(context.Background(), "sh", "touch should-not-exist")
	require.NoError(t, runError)
	assert.True(t, result.Skipped)
	assert.Contains(t, stdout.String(), "Non-interactive session detected; skipping execution.")
}

func TestRunnerRun_BlankCommand(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	runner := &Runner{Stdout: &stdout, Interactive: true}

	result, runError := runner.Run(context.Background(), "sh", "   ")
	require.NoError(t, runError)
	assert.True(t, result.Skipped)
	assert.Empty(t, stdout.String())
}

func TestRunnerRun_FindOutputIsEnriched(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "notes.txt")
	require.NoError(t, os.WriteFile(target, bytes.Repeat([]byte("x"), 2048), 0o600))

	var stdout, stderr bytes.Buffer
	runner := &Runner{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr, Interactive: true}

	result, runError := runner.Run(context.Background(), "sh", "find "+tempDir+" -name notes.txt")
	require.NoError(t, runError)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, stdout.String(), "2.0 kB  "+target+"  (modified ")
}

func TestRunnerRun_CapturedExitCode(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	runner := &Runner{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr, Interactive: true}

	result, runError := runner.Run(context.Background(), "sh", "find /definitely/not/here")
	require.NoError(t, runError)
	assert.NotEqual(t, 0, result.ExitCode)
	assert.NotEmpty(t, stderr.String())
}

func TestRunnerRun_PTY(t *testing.T) {
	t.Parallel()

	if _, statError := os.Stat("/dev/ptmx"); statError != nil {
		t.Skip("pty support unavailable")
	}

	var stdout bytes.Buffer
	runner := &Runner{Stdout: &stdout, Interactive: true}

	result, runError := runner.Run(context.Background(), "sh", "echo from-pty; exit 3")
	if runError != nil && strings.Contains(runError.Error(), "start command in pty") {
		t.Skipf("pty start failed: %v", runError)
	}
	require.NoError(t, runError)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, stdout.String(), "from-pty")
}

func TestEnrichFindOutput(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	present := filepath.Join(tempDir, "a.log")
	require.NoError(t, os.WriteFile(present, []byte("hello"), 0o600))
	missing := filepath.Join(tempDir, "gone.log")

	output := EnrichFindOutput("find . -name '*.log'", []byte(present+"\n\n"+missing+"\n"))
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "5 B  "+present+"  (modified "))
	assert.Equal(t, missing, lines[1])

	untouched := "total 0\n"
	assert.Equal(t, untouched, EnrichFindOutput("ls -l", []byte(untouched)))
	assert.Equal(t, untouched, EnrichFindOutput("findmnt", []byte(untouched)))
}
