package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pacwrap/pacwrap/agentlaunch"
)

// The UI is internal to pacwrap and opinionated for the CLI.
// It is not intended to be used outside of pacwrap.

type VerbosityLevel int

const (
	// Hidden from the user except for errors.
	VerbosityLevelSilent VerbosityLevel = iota

	// Show minimal status updates.
	VerbosityLevelNormal

	// Show verbose status updates, including per-package detail.
	VerbosityLevelVerbose
)

var verbosityLevel VerbosityLevel = VerbosityLevelNormal

func SetVerbosityLevel(level VerbosityLevel) {
	verbosityLevel = level
}

func ClearStatus() {
	StopSpinner()
	fmt.Print("\r")
}

func SetStatus(status string) {
	if verbosityLevel == VerbosityLevelSilent {
		return
	}

	StopSpinner()
	StartSpinnerWithColor(fmt.Sprintf("::%s", status), Colors.Green)
}

// ConfirmTransaction implements agentlaunch.Confirm, grounded on
// commit.rs's confirm()/prompt("::", "Proceed with {action}?", true):
// render the download summary, then prompt [Y/n] on stdin (an empty
// answer proceeds) unless
// verbosity is silent (in which case a silent run always proceeds,
// matching NO_CONFIRM semantics rather than hanging on a prompt no
// one can see).
func ConfirmTransaction(action string) agentlaunch.Confirm {
	return func(summary agentlaunch.Summary) bool {
		ClearStatus()
		RenderSummary(action, summary)

		if verbosityLevel == VerbosityLevelSilent {
			return true
		}
		return promptYesNo(os.Stdin, fmt.Sprintf("Proceed with %s?", action))
	}
}

func promptYesNo(r io.Reader, query string) bool {
	fmt.Print(Colors.Bold("::") + " " + Colors.Bold(query) + " [Y/n] ")

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	response := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return response == "" || response == "y" || response == "yes"
}

func ShowWarning(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", Colors.Red("::WARNING:: %s", message))
}

func Fatalf(msg string, args ...interface{}) {
	ClearStatus()
	fmt.Println(Colors.Red(msg, args...))
	os.Exit(1)
}

// termWidthFormatText wraps text to maxWidth on word boundaries,
// grounded on the teacher's own line-wrapping helper, reused here for
// printing a target package's long description without it overrunning
// the terminal.
func termWidthFormatText(text string, maxWidth int) string {
	text = strings.ReplaceAll(text, "\n", " ")

	words := strings.Split(text, " ")
	lines := []string{}
	currentLine := ""

	for i, word := range words {
		if word == "" {
			continue
		}

		if i == 0 {
			currentLine = word
		} else if len(currentLine)+len(word)+1 > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine += " " + word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n")
}
