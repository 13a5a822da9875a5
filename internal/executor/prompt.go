package executor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/BegaDeveloper/tasksh/internal/cliui"
)

// Prompter asks the user questions on out and reads answers from in. End of
// input counts as an empty answer, so piped sessions never block.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

func (prompter *Prompter) readLine() (string, error) {
	input, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return strings.TrimSpace(input), nil
}

// ConfirmExecution shows the exact invocation and defaults to no.
func (prompter *Prompter) ConfirmExecution(shell string, command string) (bool, error) {
	fmt.Fprintf(prompter.out, "\n%s\n", cliui.PromptStyle.Render("The following command will be executed:"))
	fmt.Fprintln(prompter.out, cliui.BoldStyle.Render(DisplayCommand(shell, command)))
	fmt.Fprint(prompter.out, cliui.PromptStyle.Render("Proceed with execution? [y/N] "))

	answer, readError := prompter.readLine()
	if readError != nil {
		return false, fmt.Errorf("read confirmation input: %w", readError)
	}
	normalized := strings.ToLower(answer)
	return normalized == "y" || normalized == "yes", nil
}

// SelectCommand lists options and returns the chosen one. ok is false when the
// user cancels with 0 or an empty answer.
func (prompter *Prompter) SelectCommand(options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, nil
	}

	for {
		fmt.Fprintln(prompter.out, cliui.InfoStyle.Render("Select a command to run:"))
		for index, option := range options {
			fmt.Fprintf(prompter.out, "  %d) %s\n", index+1, option)
		}
		fmt.Fprintln(prompter.out, "  0) Cancel")
		fmt.Fprint(prompter.out, "Enter choice (default 0): ")

		answer, readError := prompter.readLine()
		if readError != nil {
			return "", false, fmt.Errorf("read selection: %w", readError)
		}
		if answer == "" || answer == "0" {
			return "", false, nil
		}
		if choice, parseError := strconv.Atoi(answer); parseError == nil && choice >= 1 && choice <= len(options) {
			return options[choice-1], true, nil
		}
		fmt.Fprintln(prompter.out, cliui.WarningStyle.Render("Invalid selection, please try again."))
	}
}

// DisplayCommand renders the invocation the runner will perform, quoted so it
// can be pasted back into a shell.
func DisplayCommand(shell string, command string) string {
	quoted, quoteError := syntax.Quote(command, syntax.LangBash)
	if quoteError != nil {
		quoted = strconv.Quote(command)
	}
	return shell + " -c " + quoted
}

// ExecutableCommand rejects blank and comment-only text.
func ExecutableCommand(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	return trimmed, true
}

// CommandOptions collects the runnable primary command and alternatives in
// order, without duplicates.
func CommandOptions(primary string, alternatives []string) []string {
	seen := map[string]bool{}
	options := make([]string, 0, len(alternatives)+1)
	for _, candidate := range append([]string{primary}, alternatives...) {
		command, ok := ExecutableCommand(candidate)
		if !ok || seen[command] {
			continue
		}
		seen[command] = true
		options = append(options, command)
	}
	return options
}
