// Package render turns graph descriptions into image files with Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/syssam/modelgraph"
)

// DefaultBinary is the Graphviz layout program.
const DefaultBinary = "dot"

// Graphviz renders DOT documents by running the Graphviz command line.
type Graphviz struct {
	// Binary is the layout program name or path. Empty means DefaultBinary.
	Binary string
	// Logger receives debug logs. Nil discards them.
	Logger *slog.Logger
}

// Render writes src rendered in the given format to "<file>.<format>" and
// returns the path written. Output goes to a temporary file in the same
// directory first, so a failed run never leaves a partial file behind.
func (g *Graphviz) Render(ctx context.Context, src []byte, file, format string) (string, error) {
	bin, err := exec.LookPath(g.binary())
	if err != nil {
		return "", modelgraph.NewRenderError("lookup", format, "graphviz is not installed", err)
	}
	out := file + "." + format
	dir := filepath.Dir(out)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(file)+"-*."+format)
	if err != nil {
		return "", modelgraph.NewRenderError("create", format, "create output file", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", modelgraph.NewRenderError("create", format, "create output file", err)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", tmpName)
	cmd.Stdin = bytes.NewReader(src)
	cmd.Stderr = &stderr
	g.log().Debug("running graphviz", "binary", bin, "format", format, "output", out)
	if err := cmd.Run(); err != nil {
		os.Remove(tmpName)
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("%s exited with an error", g.binary())
		}
		return "", modelgraph.NewRenderError("run", format, msg, err)
	}
	if err := os.Rename(tmpName, out); err != nil {
		os.Remove(tmpName)
		return "", modelgraph.NewRenderError("rename", format, "move output file", err)
	}
	return out, nil
}

func (g *Graphviz) binary() string {
	if g.Binary != "" {
		return g.Binary
	}
	return DefaultBinary
}

func (g *Graphviz) log() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.New(slog.DiscardHandler)
}
