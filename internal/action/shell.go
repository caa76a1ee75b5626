package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	lkruntime "github.com/lorikeet-run/lorikeet/internal/runtime"
	"github.com/lorikeet-run/lorikeet/internal/plan"
)

// shellAction runs cmd through the platform's shell and returns its
// trimmed stdout. On a non-zero exit, the error carries stderr (or, when
// FullError is set, exit code plus stderr and stdout) so expectation
// failures are diagnosable from the result record alone.
type shellAction struct{ spec *plan.ShellSpec }

func (s shellAction) Execute(ctx context.Context, _ *lkruntime.Context) (string, error) {
	shellPath, shellArgs, err := determineShell()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, shellPath, append(shellArgs, s.spec.Cmd)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())

	if runErr != nil {
		var exitErr *exec.ExitError
		if s.spec.FullError {
			code := 1
			if errors.As(runErr, &exitErr) {
				code = exitErr.ExitCode()
			}
			return "", fmt.Errorf("command `%s` failed: Status Code:%d\nError:%s\nOutput:%s", s.spec.Cmd, code, errOut, out)
		}
		if errors.As(runErr, &exitErr) && errOut != "" {
			return "", fmt.Errorf("command `%s` failed: %s", s.spec.Cmd, errOut)
		}
		return "", fmt.Errorf("command `%s` failed: %w", s.spec.Cmd, runErr)
	}

	return out, nil
}

func determineShell() (string, []string, error) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}
	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}
	return "", nil, fmt.Errorf("no suitable shell found")
}
