// Package tailer streams lines appended to log files, for live monitoring.
// It watches files with fsnotify and emits parser.LogLine values on a
// channel, which plugs into the pipeline via parser.NewChanSource.
package tailer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/espirado/log-insights/pkg/parser"
)

// Tailer follows one or more log files and emits newly appended lines.
type Tailer struct {
	mu       sync.Mutex
	files    map[string]*trackedFile
	out      chan parser.LogLine
	watcher  *fsnotify.Watcher
	fromTop  bool
	paths    []string
	capacity int
}

type trackedFile struct {
	path    string
	file    *os.File
	offset  int64
	lineNum int
}

// Option configures the Tailer.
type Option func(*Tailer)

// FromStart reads each file from the beginning instead of only new lines.
func FromStart() Option {
	return func(t *Tailer) {
		t.fromTop = true
	}
}

// WithBuffer sets the output channel capacity (default 512).
func WithBuffer(n int) Option {
	return func(t *Tailer) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// New creates a Tailer for the given files. Files that do not exist yet are
// picked up when they appear.
func New(paths []string, opts ...Option) (*Tailer, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to tail")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	t := &Tailer{
		files:    make(map[string]*trackedFile),
		watcher:  w,
		paths:    paths,
		capacity: 512,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.out = make(chan parser.LogLine, t.capacity)

	return t, nil
}

// Lines returns the channel where appended lines are sent. The channel is
// closed when Start returns.
func (t *Tailer) Lines() <-chan parser.LogLine {
	return t.out
}

// Start opens the watched files and processes filesystem events until the
// context is cancelled. It blocks; run it in a goroutine.
func (t *Tailer) Start(ctx context.Context) error {
	defer close(t.out)
	defer t.watcher.Close()

	for _, p := range t.paths {
		if err := t.watcher.Add(p); err != nil {
			log.Printf("loginsight: cannot watch %s: %v", p, err)
			continue
		}
		t.openFile(p)
		if t.fromTop {
			t.readNewLines(ctx, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			t.closeAll()
			return ctx.Err()

		case ev, ok := <-t.watcher.Events:
			if !ok {
				t.closeAll()
				return nil
			}
			t.handleEvent(ctx, ev)

		case err, ok := <-t.watcher.Errors:
			if !ok {
				t.closeAll()
				return nil
			}
			log.Printf("loginsight: watch error: %v", err)
		}
	}
}

func (t *Tailer) handleEvent(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Write):
		t.readNewLines(ctx, ev.Name)

	case ev.Op.Has(fsnotify.Create):
		// File reappeared after rotation.
		t.openFile(ev.Name)
		t.readNewLines(ctx, ev.Name)

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		t.closeFile(ev.Name)
		go t.reconnect(ctx, ev.Name)
	}
}

// openFile starts tracking a file. Unless FromStart was given, tailing
// begins at the current end of file so only new lines are emitted.
func (t *Tailer) openFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.files[path]; exists {
		return
	}

	f, err := os.Open(path) // #nosec G304 - path comes from the CLI user
	if err != nil {
		log.Printf("loginsight: cannot open %s: %v", path, err)
		return
	}

	var offset int64
	if !t.fromTop {
		offset, _ = f.Seek(0, io.SeekEnd)
	}

	t.files[path] = &trackedFile{path: path, file: f, offset: offset}
}

// readNewLines reads from the tracked offset to EOF and emits complete
// lines. If the file shrank (truncation rotation), reading restarts from
// the top.
func (t *Tailer) readNewLines(ctx context.Context, path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()
	if !ok {
		return
	}

	if info, err := tf.file.Stat(); err == nil && info.Size() < tf.offset {
		tf.offset = 0
		tf.lineNum = 0
		if _, err := tf.file.Seek(0, io.SeekStart); err != nil {
			log.Printf("loginsight: seek failed on %s: %v", path, err)
			return
		}
	}

	reader := bufio.NewReader(tf.file)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			// Partial line without a trailing newline stays in the file;
			// the offset below makes the next read pick it up whole.
			if err != io.EOF {
				log.Printf("loginsight: read error on %s: %v", path, err)
			}
			break
		}

		tf.lineNum++
		line := parser.LogLine{
			Raw:     strings.TrimRight(raw, "\r\n"),
			Source:  path,
			LineNum: tf.lineNum,
			Offset:  tf.offset,
		}
		tf.offset += int64(len(raw))

		select {
		case t.out <- line:
		case <-ctx.Done():
			return
		}
	}

	if _, err := tf.file.Seek(tf.offset, io.SeekStart); err != nil {
		log.Printf("loginsight: seek failed on %s: %v", path, err)
	}
}

func (t *Tailer) closeFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tf, ok := t.files[path]; ok {
		tf.file.Close()
		delete(t.files, path)
	}
}

// reconnect polls for a rotated file to reappear (up to 5 retries).
func (t *Tailer) reconnect(ctx context.Context, path string) {
	for i := 0; i < 5; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
		if _, err := os.Stat(path); err == nil {
			if err := t.watcher.Add(path); err != nil {
				log.Printf("loginsight: cannot rewatch %s: %v", path, err)
				return
			}
			t.openFile(path)
			t.readNewLines(ctx, path)
			return
		}
	}
	log.Printf("loginsight: gave up reconnecting to %s", path)
}

func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, tf := range t.files {
		tf.file.Close()
		delete(t.files, path)
	}
}
