package parser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"visionrag/internal/port"
)

// ExecRunner runs external tools via os/exec.
type ExecRunner struct{}

var _ port.CommandRunner = (*ExecRunner)(nil)

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, fmt.Errorf("%s failed: %w (%s)", name, err, msg)
	}
	return stdout.Bytes(), nil
}
