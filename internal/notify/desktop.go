package notify

import (
	"context"
	"os/exec"
	"runtime"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop shows notifications through notify-send on Linux and osascript on
// macOS. There is no prompt to answer, so the permission is decided once from
// the enabled flag and whether the helper binary exists.
type Desktop struct {
	perm Permission
	goos string
	run  commandRunner
}

func NewDesktop(enabled bool) *Desktop {
	d := &Desktop{goos: runtime.GOOS, run: execRunner}
	d.perm = d.detect(enabled, exec.LookPath)
	return d
}

func (d *Desktop) detect(enabled bool, lookPath func(string) (string, error)) Permission {
	if !enabled {
		return PermissionDenied
	}
	bin := d.binary()
	if bin == "" {
		return PermissionDenied
	}
	if _, err := lookPath(bin); err != nil {
		return PermissionDenied
	}
	return PermissionGranted
}

func (d *Desktop) binary() string {
	switch d.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (d *Desktop) Permission() Permission { return d.perm }

func (d *Desktop) RequestPermission(context.Context) Permission { return d.perm }

func (d *Desktop) Show(ctx context.Context, title, body string) error {
	switch d.goos {
	case "linux":
		return d.run(ctx, "notify-send", "--", title, body)
	case "darwin":
		// Title and body travel as argv so they are never parsed as script.
		return d.run(ctx, "osascript", appleScriptArgs(title, body)...)
	default:
		return nil
	}
}

func appleScriptArgs(title, body string) []string {
	return []string{
		"-e", "on run argv",
		"-e", "display notification (item 2 of argv) with title (item 1 of argv)",
		"-e", "end run",
		"--", title, body,
	}
}
