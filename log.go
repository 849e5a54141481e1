//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"fmt"

	"github.com/kr/pretty"
)

// console returns the host console, or stderr when the host is not loaded.
func console() Console {
	if env, err := Default(); err == nil {
		return env.console
	}
	return stderrConsole
}

// Log will print a message to the max console.
func Log(format string, args ...any) {
	console().Post(fmt.Sprintf(format, args...))
}

// Error will print an error to the max console.
func Error(format string, args ...any) {
	console().Error(fmt.Sprintf(format, args...))
}

// Alert will show an alert dialog.
func Alert(format string, args ...any) {
	console().Alert(fmt.Sprintf(format, args...))
}

// Pretty will pretty print and log the provided values.
func Pretty(a ...any) {
	console().Post(pretty.Sprint(a...))
}
