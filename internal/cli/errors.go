package cli

import (
	"strings"

	"github.com/matzehuels/coursemap/pkg/errors"
)

// Exit codes returned by main.
const (
	exitFailure = 1
	exitBlocked = 2 // a status change was rejected by the prerequisite gate
)

// FormatError renders err for the terminal, prefixed with its code when it
// has one.
func FormatError(err error) string {
	code := errors.GetCode(err)
	if code == "" {
		return styleIconError.Render(iconError) + " " + err.Error()
	}
	msg := strings.Replace(err.Error(), string(code)+": ", "", 1)
	return styleIconError.Render(iconError) + " " + StyleDim.Render(string(code)) + " " + msg
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if errors.Is(err, errors.ErrCodePrerequisitesUnmet) {
		return exitBlocked
	}
	return exitFailure
}
