package compiler

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/modelgraph/compiler/gen"
	"github.com/syssam/modelgraph/schema"
)

// Watch generates the graph, then regenerates it each time a file backing
// one of the loaded modules changes. The viewer, if enabled, is opened
// after the first pass only. Failures of the first pass are
// returned; later failures are logged and watching continues. Watch
// returns nil when ctx is done.
func Watch(ctx context.Context, cfg *gen.Config, opts ...Option) error {
	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return err
	}
	_, modules, err := p.generate(ctx, cfg.View)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	files := watchFiles(w, nil, modules, cfg)

	log := cfg.Log()
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(ev, files) {
				log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
				settle = time.After(p.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-settle:
			settle = nil
			_, mods, err := p.generate(ctx, false)
			if err != nil {
				log.Error("regeneration failed", "error", err)
				continue
			}
			files = watchFiles(w, files, mods, cfg)
		}
	}
}

// watchFiles adds the directories of the module files to w and returns
// the set of watched files.
func watchFiles(w *fsnotify.Watcher, prev map[string]bool, modules []*schema.Module, cfg *gen.Config) map[string]bool {
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, m := range modules {
		for _, f := range m.Files {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			files[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			cfg.Log().Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}
	// Keep watching files that disappeared so that they are picked up
	// again when restored.
	for f := range prev {
		if !files[f] {
			files[f] = true
		}
	}
	return files
}

// relevant reports whether ev touches a watched file, or a new file that
// may declare models next to them.
func relevant(ev fsnotify.Event, files map[string]bool) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if files[name] {
		return true
	}
	if !ev.Has(fsnotify.Create) {
		return false
	}
	ext := filepath.Ext(name)
	for f := range files {
		if filepath.Dir(f) == filepath.Dir(name) && filepath.Ext(f) == ext {
			return true
		}
	}
	return false
}
