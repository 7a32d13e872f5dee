package port

import "context"

// CommandRunner executes an external tool and returns its stdout. PDF text
// extraction, page rendering and OCR all shell out through this interface so
// tests can substitute canned output.
type CommandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}
