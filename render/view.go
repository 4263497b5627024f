package render

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/syssam/modelgraph"
)

// opener returns the command opening a file with the default application.
var opener = func(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

// View opens the file at path with the platform viewer and returns
// without waiting for the viewer to exit.
func View(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	abs, err := filepath.Abs(path)
	if err != nil {
		return modelgraph.NewRenderError("view", format, "resolve path", err)
	}
	name, args := opener(abs)
	// The viewer outlives the command, so it is not bound to ctx.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return modelgraph.NewRenderError("view", format, "start viewer", err)
	}
	return cmd.Process.Release()
}
