package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/filetemplate"
	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func (a *app) newWatchCmd() *cobra.Command {
	var (
		ff    fileFlags
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR TEMPLATE",
		Short: "Render a template for every file created or changed in a directory",
		Long: `Watch DIR and render TEMPLATE for each file written to it. Results are
printed as "path<TAB>result", one per line. Files are rendered once writes
have stopped for --delay.`,
		Example: `  mtl watch ./inbox "{created.year}/{mimetype:type}/{filepath.name}"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ff.templateOptions(a, cmd)
			if err != nil {
				return err
			}
			extra, err := ff.providers()
			if err != nil {
				return err
			}
			dir, template := args[0], args[1]
			if _, err := mtl.Parse(template); err != nil {
				return err
			}

			watcher, err := newDirWatcher(dir)
			if err != nil {
				return err
			}
			defer watcher.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			handle := func(path string) {
				mu.Lock()
				defer mu.Unlock()
				ft, err := filetemplate.New(path, filetemplate.WithProviders(extra...))
				if err != nil {
					mtl.Debug("skipping %s: %v", path, err)
					return
				}
				if err := renderTo(out, path+"\t", ft, template, opts); err != nil {
					mtl.WithField("file", path).Error("render failed: %v", err)
				}
			}

			mtl.Info("watching %s", dir)
			return runWatchLoop(ctx, watcher, delay, handle)
		},
	}
	ff.register(cmd.Flags())
	cmd.Flags().DurationVar(&delay, "delay", 200*time.Millisecond, "quiet period after the last write before a file is rendered")
	return cmd
}

func newDirWatcher(dir string) (*fsnotify.Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return watcher, nil
}

// runWatchLoop calls handle for each file created or written under watcher
// once it has been quiet for delay. It returns when ctx is done or the
// watcher is closed.
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, delay time.Duration, handle func(path string)) error {
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(delay)
			return
		}
		timers[path] = time.AfterFunc(delay, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			if ctx.Err() == nil {
				handle(path)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			schedule(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			mtl.Warn("watch error: %v", err)
		}
	}
}
