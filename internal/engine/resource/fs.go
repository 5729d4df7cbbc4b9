package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/iris/internal/engine/fault"
)

// FS loads resources from a directory tree. Names are slash separated and
// relative to the root. Results are cached; concurrent loads of the same
// name share one read.
type FS struct {
	root  string
	log   *zap.Logger
	cache *Cache
	group singleflight.Group

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFS creates a loader rooted at dir.
func NewFS(dir string, log *zap.Logger) *FS {
	return &FS{
		root:  dir,
		log:   log.Named("resource"),
		cache: NewCache(),
	}
}

// Root returns the directory resources are read from.
func (f *FS) Root() string { return f.root }

// Load reads the named resource.
func (f *FS) Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "/")
	if !fs.ValidPath(name) {
		return nil, &fault.ResourceError{Op: "load", Resource: name, Err: fs.ErrInvalid}
	}

	if data, ok := f.cache.Get(name); ok {
		return data, nil
	}

	v, err, shared := f.group.Do(name, func() (any, error) {
		data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)))
		if err != nil {
			return nil, &fault.ResourceError{Op: "load", Resource: name, Err: err}
		}
		f.cache.Set(name, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.log.Debug("shared load", zap.String("name", name))
	}
	return v.([]byte), nil
}

// Preload reads names concurrently so later loads hit the cache.
func (f *FS) Preload(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := f.Load(name)
			return err
		})
	}
	return g.Wait()
}

// Stats returns cache hits and misses.
func (f *FS) Stats() (hits, misses int) {
	return f.cache.Stats()
}

// Watch drops cached entries when their files change on disk.
// Safe to call multiple times.
func (f *FS) Watch() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// fsnotify is not recursive, add every directory
	err = filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", f.root, err)
	}

	f.watcher = w
	f.done = make(chan struct{})
	go f.watch(w, f.done)
	return nil
}

func (f *FS) watch(w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Add(event.Name)
				}
			}
			rel, err := filepath.Rel(f.root, event.Name)
			if err != nil {
				continue
			}
			name := filepath.ToSlash(rel)
			f.cache.Delete(name)
			f.log.Debug("resource changed", zap.String("name", name), zap.Stringer("op", event.Op))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and clears the cache.
func (f *FS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.watcher != nil {
		close(f.done)
		err = f.watcher.Close()
		if errors.Is(err, fsnotify.ErrClosed) {
			err = nil
		}
		f.watcher = nil
	}
	f.cache.Clear()
	return err
}
