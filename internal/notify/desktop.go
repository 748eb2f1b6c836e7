// Package notify holds the alarm side effects: system notifications and the
// ringtone signal.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const commandTimeout = 5 * time.Second

// Runner executes an external command. Tests swap it out.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop sends notifications through notify-send on Linux and osascript on
// macOS. Other platforms are silently skipped.
type Desktop struct {
	GOOS string
	Run  Runner
}

func NewDesktop() *Desktop {
	return &Desktop{GOOS: runtime.GOOS, Run: execRunner}
}

func (d *Desktop) Notify(title, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	switch d.GOOS {
	case "linux":
		return d.Run(ctx, "notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.Run(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
