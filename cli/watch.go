package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/interpreter"
)

type WatchCmd struct {
	File     string        `help:"Command file to watch." arg:""`
	Create   bool          `help:"Create the file if it doesn't exist (no confirmation prompt)." short:"c"`
	Debounce time.Duration `help:"Delay before re-running after a change. Defaults to watch.debounce."`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config, log logrus.FieldLogger) error {
	path, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := cmd.ensureFile(ctx, path); err != nil {
		return err
	}

	debounce := cmd.Debounce
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rerun := func(runCtx context.Context) {
		printInfof(ctx.Stderr, "Running %s", pathStyle.Render(path))
		runOnce(runCtx, ctx, globals, cfg, path, log)
	}

	w, err := newFileWatcher(path, debounce, log, rerun)
	if err != nil {
		return err
	}

	rerun(runCtx)
	printInfof(ctx.Stderr, "Watching %s for changes (press Ctrl+C to stop)", pathStyle.Render(path))

	return w.Run(runCtx)
}

// ensureFile creates path after confirmation when it does not exist.
func (cmd *WatchCmd) ensureFile(ctx *kong.Context, path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access file: %w", err)
	}

	shouldCreate := cmd.Create
	if !shouldCreate {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", path))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}

	if !shouldCreate {
		return fmt.Errorf("file does not exist: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(""), 0600); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	printInfof(ctx.Stderr, "Created empty command file: %s", pathStyle.Render(path))
	return nil
}

// runOnce executes the command file and reports failures without stopping
// the watcher.
func runOnce(ctx context.Context, kctx *kong.Context, globals *Globals, cfg *config.Config, path string, log logrus.FieldLogger) {
	exec, err := execute(ctx, cfg, path, kctx.Stdout, log)
	if err != nil {
		printError(kctx.Stderr, err.Error())
		return
	}
	if exec.err != nil {
		_, _ = fmt.Fprintln(kctx.Stdout, interpreter.Message(exec.err))
		if globals.Verbose {
			_, _ = fmt.Fprintln(kctx.Stderr, NewErrorRenderer(exec.script.Source).Render(exec.err))
		}
	}
}

// fileWatcher calls onChange after path has been written, created, removed
// or renamed, once no further event arrived for the debounce delay.
type fileWatcher struct {
	path     string
	debounce time.Duration
	log      logrus.FieldLogger
	onChange func(ctx context.Context)

	watcher *fsnotify.Watcher
	// mu serialises onChange calls with shutdown; closed is set under it.
	mu     sync.Mutex
	closed bool
}

// newFileWatcher starts watching the directory of path, so atomic saves that
// replace the file are seen too.
func newFileWatcher(path string, debounce time.Duration, log logrus.FieldLogger, onChange func(ctx context.Context)) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &fileWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		log:      log,
		onChange: onChange,
		watcher:  watcher,
	}, nil
}

// Run processes file system events until ctx is cancelled. It returns only
// after an onChange call already in progress has finished, and no call
// starts afterwards.
func (w *fileWatcher) Run(ctx context.Context) error {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		_ = w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.log.WithField("event", event.Op.String()).Debug("command file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				w.mu.Lock()
				defer w.mu.Unlock()

				if w.closed || ctx.Err() != nil {
					return
				}
				w.onChange(ctx)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("file watcher error")
		}
	}
}
