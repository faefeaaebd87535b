// Package otpgen produces TOTP codes for stored secrets.  No TOTP math is
// implemented here: codes come either from an external generator tool or
// from the creachadair/otp library.
package otpgen

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/creachadair/otp"
)

// A Generator produces the current TOTP code for a Base32-encoded secret.
type Generator interface {
	Generate(ctx context.Context, secret string) (string, error)
}

// DefaultTool is the command line used by an External with no Tool set.
var DefaultTool = []string{"oathtool", "--totp", "--base32"}

// External is a Generator that invokes an external code-generation tool.
// The secret is appended as the final argument, and the code is read from
// the tool's standard output.
type External struct {
	Tool string   // the program to run (if empty, use DefaultTool)
	Args []string // arguments preceding the secret
}

// Generate implements the Generator interface.
func (e External) Generate(ctx context.Context, secret string) (string, error) {
	tool, args := e.Tool, e.Args
	if tool == "" {
		tool, args = DefaultTool[0], DefaultTool[1:]
	}
	argv := append(append([]string(nil), args...), secret)

	out, err := exec.CommandContext(ctx, tool, argv...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %s: %w: %s", tool, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("run %s: %w", tool, err)
	}
	code := strings.TrimSpace(string(out))
	if !isCode(code) {
		return "", fmt.Errorf("%s returned malformed code %q", tool, code)
	}
	return code, nil
}

// isCode reports whether s looks like a generated code, meaning 6 to 8 ASCII
// decimal digits.
func isCode(s string) bool {
	if len(s) < 6 || len(s) > 8 {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Period is the TOTP time step in seconds.
const Period = 30

// Library is a Generator that computes codes with the creachadair/otp
// library using the standard settings, six digits on a 30-second step.
type Library struct {
	Now func() time.Time // if nil, use time.Now
}

// Generate implements the Generator interface.
func (g Library) Generate(_ context.Context, secret string) (string, error) {
	var cfg otp.Config
	if err := cfg.ParseKey(secret); err != nil {
		return "", fmt.Errorf("parse secret: %w", err)
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	cfg.TimeStep = func() uint64 { return uint64(now().Unix() / Period) }
	return cfg.TOTP(), nil
}
