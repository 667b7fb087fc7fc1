// Package errors holds CLI-level error presentation helpers. Business-rule
// sentinels live in errdefs.
package errors

import (
	"fmt"
	"os"

	"github.com/tandem-app/tandem/internal/logger"
)

// Format renders err with the consistent "Error: " prefix used on stderr.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs err and exits with code 1. A nil err is a no-op so command
// implementations can call Fatal(run()) unconditionally.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(1)
}

// Fatalf formats a message, logs it, and exits with code 1.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
