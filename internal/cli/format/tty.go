package format

import (
	"os"

	"golang.org/x/term"
)

// Environment variables that override terminal detection.
const (
	envNoColor    = "NO_COLOR"
	envForceColor = "CHATWOOT_FORCE_COLOR"
)

// IsTTY reports whether stdout should receive styled output. NO_COLOR wins,
// then CHATWOOT_FORCE_COLOR, then a dumb or unset TERM disables styling.
func IsTTY() bool {
	return styledOutput(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))
}

func styledOutput(getenv func(string) string, terminal bool) bool {
	if getenv(envNoColor) != "" {
		return false
	}
	if getenv(envForceColor) != "" {
		return true
	}
	switch getenv("TERM") {
	case "", "dumb":
		return false
	}
	return terminal
}
