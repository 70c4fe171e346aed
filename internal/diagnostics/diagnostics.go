// Package diagnostics is the CLI's stderr reporter. No third-party logging
// library appears in any retrieved example repo's go.mod — every one of
// them logs through fmt.Fprintf(os.Stderr, ...) or the stdlib log package
// for CLI tools of this size — so make-cfg follows the same plain
// convention rather than introducing one.
package diagnostics

import (
	"fmt"
	"os"

	"makecfg/internal/cfg"
)

// Fatalf prints a formatted message to stderr and exits the process with
// status 1, matching spec §7's "print message; exit 1" handling for
// argument and I/O errors.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "make-cfg: "+format+"\n", args...)
	os.Exit(1)
}

// Warnf prints a non-fatal diagnostic to stderr; the process continues.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "make-cfg: warning: "+format+"\n", args...)
}

// ReportViolations prints every sanity-check violation for one function,
// per spec §7's "report to stderr; continue emission" handling. It never
// aborts the process.
func ReportViolations(funcName string, violations []cfg.Violation) {
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "make-cfg: %s: %s\n", funcName, v)
	}
}
