package notify

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Desktop shows notifications through the host's notification tool:
// notify-send on Linux and BSD; terminal-notifier on macOS, falling back to
// osascript. Permission is default until Request finds a usable tool.
//
// The osascript fallback has no way to address an earlier notification, so
// on a Mac without terminal-notifier a tag does not replace anything.
type Desktop struct {
	mu      sync.Mutex
	perm    Permission
	command string
	timeout time.Duration
	goos    string

	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{
		perm:     PermissionDefault,
		timeout:  5 * time.Second,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm
}

func (d *Desktop) Request() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.perm != PermissionDefault {
		return d.perm
	}
	tools := []string{"notify-send"}
	if d.goos == "darwin" {
		tools = []string{"terminal-notifier", "osascript"}
	}
	for _, tool := range tools {
		if path, err := d.lookPath(tool); err == nil {
			d.command = path
			d.perm = PermissionGranted
			return d.perm
		}
	}
	d.perm = PermissionDenied
	return d.perm
}

func (d *Desktop) Show(title, body, tag string) error {
	d.mu.Lock()
	perm, command := d.perm, d.command
	d.mu.Unlock()
	if perm != PermissionGranted {
		return fmt.Errorf("%w: permission %s", ErrUnavailable, perm)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.run(ctx, command, showArgs(filepath.Base(command), title, body, tag)...)
}

func showArgs(tool, title, body, tag string) []string {
	switch tool {
	case "terminal-notifier":
		return []string{"-title", title, "-message", body, "-group", "docket-" + tag}
	case "osascript":
		return []string{"-e", fmt.Sprintf("display notification %q with title %q", body, title)}
	}
	return []string{
		"--app-name=docket",
		"--hint=string:x-canonical-private-synchronous:docket-" + tag,
		title, body,
	}
}
