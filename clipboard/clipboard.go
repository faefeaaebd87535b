// Package clipboard provides write access to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// WriteString attempts to copy the given string to the system clipboard.
func WriteString(s string) error {
	cmd, err := clipCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(s)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func clipCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "linux":
		// We can't call xclip or xsel if there isn't a display set, since
		// they won't work.
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return nil, errors.New("unable to copy to clipboard (no display)")
		}
		if _, err := exec.LookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
		return nil, errors.New("no clipboard tool found (install xclip or xsel)")
	}
	return nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
}
