package blueprint

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/nieomylnieja/apibgen/internal/config"
	"github.com/nieomylnieja/apibgen/internal/diag"
	"github.com/nieomylnieja/apibgen/internal/source"
)

// FatalError aborts a whole generation pass. It carries a single concise
// message for the user; route-local failures never produce one.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string {
	return e.msg
}

func fatalf(format string, args ...any) *FatalError {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// Fatal promotes err to a run-fatal error.
func Fatal(err error) *FatalError {
	return &FatalError{msg: err.Error()}
}

// Generate runs one full pass: load the project under root, scan it, write
// the blueprint, and run the after-hook once the destination is closed.
func Generate(root string, cfg *config.Config, rep diag.Reporter) error {
	prog, err := source.Load(root)
	if err != nil {
		// The generator has no valid input to work with.
		return &FatalError{msg: err.Error()}
	}
	return RunPass(prog, cfg, rep)
}

// RunPass executes one pass over an already loaded program. The after-hook
// is not invoked until the destination is flushed and closed; close failures
// propagate on every exit path.
func RunPass(prog *source.Program, cfg *config.Config, rep diag.Reporter) error {
	scanner := NewScanner(prog, cfg, rep)
	routers, err := scanner.Scan()
	if err != nil {
		return err
	}
	if err := writeDocument(cfg, routers); err != nil {
		return err
	}
	return runAfterHook(cfg.AfterHook)
}

func writeDocument(cfg *config.Config, routers []*Router) (err error) {
	if dir := filepath.Dir(cfg.Output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %s", cfg.Output)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close output file %s", cfg.Output)
		}
	}()

	w := bufio.NewWriter(f)
	e := NewEmitter(w)
	e.WriteHeader(cfg.Host, cfg.Title, cfg.Description)
	for _, r := range routers {
		e.WriteRouter(r)
	}
	if err := e.Err(); err != nil {
		return err
	}
	return errors.Wrapf(w.Flush(), "failed to flush output file %s", cfg.Output)
}

func runAfterHook(hook string) error {
	if hook == "" {
		return nil
	}
	cmd := exec.Command("/bin/sh", "-c", hook)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return errors.Wrapf(cmd.Run(), "after hook %q failed", hook)
}

// Watch regenerates the blueprint whenever a Go file under root changes.
// Passes are strictly serialized: a change arriving while a pass is in
// flight triggers a new pass only after the previous one has fully
// completed, including the destination close and the after-hook.
func Watch(ctx context.Context, root string, cfg *config.Config, rep diag.Reporter, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()
	if err := watchTree(watcher, root); err != nil {
		return err
	}

	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		output = cfg.Output
	}

	runOnce := func() {
		if err := Generate(root, cfg, rep); err != nil {
			rep.Report(diag.Fatal, "", 0, err.Error())
		}
	}
	runOnce()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = watchTree(watcher, ev.Name)
				}
			}
			if !triggersPass(ev.Name, output) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rep.Report(diag.Warning, "", 0, err.Error())
		case <-timer.C:
			// Running the pass inline serializes it with further triggers.
			runOnce()
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
			return filepath.SkipDir
		}
		return errors.Wrapf(watcher.Add(path), "failed to watch %s", path)
	})
}

func triggersPass(name, output string) bool {
	if abs, err := filepath.Abs(name); err == nil && abs == output {
		return false
	}
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}
