package animate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ToolError reports an external tool that failed or could not start.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("animate: %s failed", e.Tool)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ConvertAssembler runs ImageMagick:
//
//	convert -delay <delay> -loop 0 <frames...> <output>
type ConvertAssembler struct {
	// Binary defaults to "convert".
	Binary string
}

func (a *ConvertAssembler) binary() string {
	if a.Binary == "" {
		return "convert"
	}
	return a.Binary
}

func (a *ConvertAssembler) Args(files []string, output string, delay int) []string {
	args := []string{"-delay", strconv.Itoa(delay), "-loop", "0"}
	args = append(args, files...)
	return append(args, output)
}

func (a *ConvertAssembler) Assemble(ctx context.Context, pattern, output string, delay int) error {
	files, err := frameFiles(pattern)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.binary(), a.Args(files, output, delay)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		te := &ToolError{Tool: a.binary(), Stderr: strings.TrimSpace(stderr.String()), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode()
		}
		return te
	}
	return nil
}
