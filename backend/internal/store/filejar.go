package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const jarFileName = "cookies.json"

// FileJar persists cookies as JSON in a data directory. Edits made to the
// file by other processes are picked up through fsnotify.
type FileJar struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu          sync.Mutex
	cookies     map[string]Cookie
	lastWritten []byte
	watcher     *fsnotify.Watcher
	onChange    []func()
}

// OpenFileJar loads dir/cookies.json, creating dir if needed. A missing file
// is an empty jar; an unreadable one is logged and treated as empty.
func OpenFileJar(dir string, log zerolog.Logger) (*FileJar, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	j := &FileJar{
		path:    filepath.Join(dir, jarFileName),
		log:     log.With().Str("subsystem", "jar").Logger(),
		now:     time.Now,
		cookies: make(map[string]Cookie),
	}
	if err := j.reload(); err != nil {
		j.log.Warn().Err(err).Str("path", j.path).Msg("cookie jar unreadable, starting empty")
	}
	return j, nil
}

// Path returns the backing file path.
func (j *FileJar) Path() string {
	return j.path
}

// OnChange registers fn to run after the file changed on disk.
func (j *FileJar) OnChange(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.onChange = append(j.onChange, fn)
}

// Watch starts watching the jar file for external edits until Close.
func (j *FileJar) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files rather than writing in place.
	if err := w.Add(filepath.Dir(j.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(j.path), err)
	}

	j.mu.Lock()
	j.watcher = w
	j.mu.Unlock()

	go j.watchLoop(w)
	return nil
}

func (j *FileJar) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != j.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			changed, err := j.reloadIfForeign()
			if err != nil {
				j.log.Warn().Err(err).Msg("reload after external edit failed")
				continue
			}
			if changed {
				j.log.Info().Str("path", j.path).Msg("cookie jar changed on disk")
				j.notify()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			j.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (j *FileJar) notify() {
	j.mu.Lock()
	fns := append([]func(){}, j.onChange...)
	j.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Close stops the watcher.
func (j *FileJar) Close() error {
	j.mu.Lock()
	w := j.watcher
	j.watcher = nil
	j.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

func (j *FileJar) Get(name string) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cookies[name]
	if !ok {
		return "", false, nil
	}
	if c.expired(j.now()) {
		delete(j.cookies, name)
		return "", false, j.flushLocked()
	}
	return c.Value, true, nil
}

func (j *FileJar) Set(c Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c.expired(j.now()) {
		delete(j.cookies, c.Name)
	} else {
		j.cookies[c.Name] = c
	}
	return j.flushLocked()
}

func (j *FileJar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, name)
	return j.flushLocked()
}

func (j *FileJar) encodeLocked() ([]byte, error) {
	list := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		list = append(list, c)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Name < list[b].Name })
	return json.MarshalIndent(list, "", "  ")
}

// flushLocked writes the jar atomically through a temp file and rename.
func (j *FileJar) flushLocked() error {
	data, err := j.encodeLocked()
	if err != nil {
		return fmt.Errorf("encode cookie jar: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.path), jarFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp jar: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp jar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp jar: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace jar: %w", err)
	}
	j.lastWritten = data
	return nil
}

func (j *FileJar) read() ([]byte, map[string]Cookie, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, map[string]Cookie{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read cookie jar: %w", err)
	}
	var list []Cookie
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &list); err != nil {
			return data, nil, fmt.Errorf("decode cookie jar: %w", err)
		}
	}
	now := j.now()
	cookies := make(map[string]Cookie, len(list))
	for _, c := range list {
		if c.expired(now) {
			continue
		}
		cookies[c.Name] = c
	}
	return data, cookies, nil
}

func (j *FileJar) reload() error {
	data, cookies, err := j.read()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.cookies = cookies
	j.lastWritten = data
	j.mu.Unlock()
	return nil
}

// reloadIfForeign reloads when the file differs from what this jar last wrote.
func (j *FileJar) reloadIfForeign() (bool, error) {
	data, cookies, err := j.read()
	if err != nil {
		return false, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if bytes.Equal(data, j.lastWritten) {
		return false, nil
	}
	j.cookies = cookies
	j.lastWritten = data
	return true, nil
}
