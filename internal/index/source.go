package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source provides the serialized index to the widget
type Source interface {
	// Name identifies the source in diagnostics
	Name() string
	// Serialized returns the serialized index or an error wrapping
	// ErrNotAvailable when the host has not provided it yet
	Serialized() (*Serialized, error)
	// Ready is closed once the index is available. A nil channel means the
	// source cannot signal readiness and callers must poll.
	Ready() <-chan struct{}
}

// InjectedSource holds an index handed over by the host at runtime
type InjectedSource struct {
	mu    sync.RWMutex
	data  *Serialized
	ready chan struct{}
	once  sync.Once
}

// NewInjectedSource creates an empty source; Inject makes it ready
func NewInjectedSource() *InjectedSource {
	return &InjectedSource{ready: make(chan struct{})}
}

// NewStaticSource creates a source that is ready immediately
func NewStaticSource(s *Serialized) *InjectedSource {
	src := NewInjectedSource()
	src.Inject(s)
	return src
}

// Inject stores the serialized index and signals readiness. Later calls
// replace the data but readiness is only signalled once.
func (s *InjectedSource) Inject(data *Serialized) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.once.Do(func() { close(s.ready) })
}

func (s *InjectedSource) Name() string { return "injected" }

func (s *InjectedSource) Serialized() (*Serialized, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNotAvailable
	}
	return s.data, nil
}

func (s *InjectedSource) Ready() <-chan struct{} {
	return s.ready
}

// FileSource reads the serialized index from a file that another process
// (typically the site generator) writes
type FileSource struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	ready    chan struct{}
	once     sync.Once
	watching bool
}

// NewFileSource creates a source for path. Call Watch to enable the
// readiness signal.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:     path,
		debounce: 150 * time.Millisecond,
		ready:    make(chan struct{}),
	}
}

func (s *FileSource) Name() string { return s.path }

// Path returns the watched file
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Serialized() (*Serialized, error) {
	return ReadFile(s.path)
}

// Ready returns nil until Watch succeeded
func (s *FileSource) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.watching {
		return nil
	}
	return s.ready
}

// Watch signals readiness as soon as the file exists. If the file is
// already present readiness fires immediately; otherwise the parent
// directory is watched until the file is created or written. The watcher
// stops when ctx is done or readiness fired.
func (s *FileSource) Watch(ctx context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		s.markWatching()
		s.signal()
		return nil
	}

	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to watch index directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch index directory: %w", err)
	}
	s.markWatching()

	// The file may have appeared between the stat and the Add
	if _, err := os.Stat(s.path); err == nil {
		watcher.Close()
		s.signal()
		return nil
	}

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *FileSource) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target := filepath.Clean(s.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// Wait for writes to settle before declaring the file ready
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.debounce)
			fire = timer.C

		case <-fire:
			log.Printf("Index file %s is available", s.path)
			s.signal()
			return

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Index watcher error: %v", err)
		}
	}
}

func (s *FileSource) markWatching() {
	s.mu.Lock()
	s.watching = true
	s.mu.Unlock()
}

func (s *FileSource) signal() {
	s.once.Do(func() { close(s.ready) })
}

// IsNotAvailable reports whether err means the index has not been provided yet
func IsNotAvailable(err error) bool {
	return errors.Is(err, ErrNotAvailable)
}
