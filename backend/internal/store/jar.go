package store

import (
	"sync"
	"time"
)

// Cookie is one persisted name/value pair.
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires"`
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// Jar is a key-value cookie store.
type Jar interface {
	// Get returns the value of an unexpired cookie.
	Get(name string) (string, bool, error)
	// Set stores c. A cookie whose expiry is in the past deletes the entry.
	Set(c Cookie) error
	Delete(name string) error
}

// MemoryJar is an in-process Jar.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[string]Cookie
	now     func() time.Time
}

// NewMemoryJar returns an empty MemoryJar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{cookies: make(map[string]Cookie), now: time.Now}
}

func (j *MemoryJar) Get(name string) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.cookies[name]
	if !ok {
		return "", false, nil
	}
	if c.expired(j.now()) {
		delete(j.cookies, name)
		return "", false, nil
	}
	return c.Value, true, nil
}

func (j *MemoryJar) Set(c Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c.expired(j.now()) {
		delete(j.cookies, c.Name)
		return nil
	}
	j.cookies[c.Name] = c
	return nil
}

func (j *MemoryJar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, name)
	return nil
}
