// Package store persists the remapper configuration in a cookie.
package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/metrics"
	"github.com/soar/padremap/backend/internal/remap"
)

const (
	// CookieName is the cookie holding the JSON-encoded configuration.
	CookieName = "user_game_controller_config"
	// CookiePath is the cookie path attribute.
	CookiePath = "/"
	// CookieLifetime is how long a saved configuration stays valid.
	CookieLifetime = 365 * 24 * time.Hour
)

// Encode serializes cfg for the cookie value: JSON, percent-encoded so it
// survives cookie value rules and decodeURIComponent.
func Encode(cfg remap.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return url.PathEscape(string(data)), nil
}

// Decode parses a cookie value into a configuration overlay. Values that are
// not percent-encoded are parsed as-is.
func Decode(value string) (remap.Partial, error) {
	raw := value
	if unescaped, err := url.PathUnescape(value); err == nil {
		raw = unescaped
	}
	var p remap.Partial
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return remap.Partial{}, fmt.Errorf("parse config cookie: %w", err)
	}
	return p, nil
}

// Store is the configuration store. Parse and storage failures are logged and
// resolved to defaults; they never reach the caller.
type Store struct {
	jar Jar
	log zerolog.Logger
	now func() time.Time

	mu          sync.RWMutex
	cfg         remap.Config
	subscribers []func(remap.Config)
}

// New returns a Store over jar holding the default configuration. Call Load
// to overlay the persisted values.
func New(jar Jar, log zerolog.Logger) *Store {
	return &Store{
		jar: jar,
		log: log.With().Str("subsystem", "store").Logger(),
		now: time.Now,
		cfg: remap.DefaultConfig(),
	}
}

// Config returns a snapshot of the configuration in effect.
func (s *Store) Config() remap.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Subscribe registers fn to receive the configuration after every change.
func (s *Store) Subscribe(fn func(remap.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Load reads the cookie and deep-merges it over the defaults. A corrupt
// cookie is deleted and the defaults are used.
func (s *Store) Load() {
	value, ok, err := s.jar.Get(CookieName)
	if err != nil {
		s.log.Error().Err(err).Msg("reading config cookie failed, using defaults")
		s.replace(remap.DefaultConfig())
		return
	}
	if !ok {
		s.log.Info().Msg("no saved config found, using defaults")
		s.replace(remap.DefaultConfig())
		return
	}

	cfg, err := s.parse(value)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt config cookie")
		if err := s.jar.Delete(CookieName); err != nil {
			s.log.Error().Err(err).Msg("deleting corrupt config cookie failed")
		}
		s.replace(remap.DefaultConfig())
		return
	}
	s.log.Info().Interface("config", cfg).Msg("controller config loaded")
	s.replace(cfg)
}

// Import overlays a configuration cookie sent by a browser when nothing is
// persisted yet. It reports whether the value was adopted.
func (s *Store) Import(value string) bool {
	if _, ok, err := s.jar.Get(CookieName); err != nil || ok {
		return false
	}
	cfg, err := s.parse(value)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring corrupt browser config cookie")
		return false
	}
	s.replace(cfg)
	s.Save()
	return true
}

func (s *Store) parse(value string) (remap.Config, error) {
	p, err := Decode(value)
	if err != nil {
		return remap.Config{}, err
	}
	cfg := remap.DefaultConfig().Merge(p)
	if err := cfg.Validate(); err != nil {
		return remap.Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration cookie with a fresh expiry.
func (s *Store) Save() {
	cfg := s.Config()
	value, err := Encode(cfg)
	if err != nil {
		metrics.ConfigWrites.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("encoding config failed")
		return
	}
	err = s.jar.Set(Cookie{
		Name:    CookieName,
		Value:   value,
		Path:    CookiePath,
		Expires: s.now().Add(CookieLifetime),
	})
	if err != nil {
		metrics.ConfigWrites.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("saving config cookie failed")
		return
	}
	metrics.ConfigWrites.WithLabelValues("ok").Inc()
	s.log.Debug().Msg("controller config saved")
}

// Apply merges p over the current configuration without persisting it.
func (s *Store) Apply(p remap.Partial) error {
	s.mu.Lock()
	next := s.cfg.Merge(p)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = next
	fns := s.subscribersLocked()
	s.mu.Unlock()

	publish(fns, next)
	return nil
}

// Update merges p over the current configuration and persists it. An
// invalid overlay is rejected and nothing changes.
func (s *Store) Update(p remap.Partial) error {
	if err := s.Apply(p); err != nil {
		return err
	}
	s.Save()
	return nil
}

// SetBinding assigns binding to button and persists the result.
func (s *Store) SetBinding(button int, binding string) error {
	return s.Update(remap.Partial{ButtonMappings: map[int]string{button: binding}})
}

// Reset restores the defaults and persists them.
func (s *Store) Reset() {
	s.replace(remap.DefaultConfig())
	s.Save()
}

// Cookie returns the browser cookie equivalent of the current configuration.
func (s *Store) Cookie() *http.Cookie {
	value, err := Encode(s.Config())
	if err != nil {
		s.log.Error().Err(err).Msg("encoding config cookie failed")
		return nil
	}
	return &http.Cookie{
		Name:    CookieName,
		Value:   value,
		Path:    CookiePath,
		Expires: s.now().Add(CookieLifetime),
		MaxAge:  int(CookieLifetime / time.Second),
	}
}

func (s *Store) replace(cfg remap.Config) {
	s.mu.Lock()
	changed := !reflect.DeepEqual(s.cfg, cfg)
	s.cfg = cfg.Clone()
	fns := s.subscribersLocked()
	s.mu.Unlock()

	if changed {
		publish(fns, cfg)
	}
}

func (s *Store) subscribersLocked() []func(remap.Config) {
	return append([]func(remap.Config){}, s.subscribers...)
}

func publish(fns []func(remap.Config), cfg remap.Config) {
	for _, fn := range fns {
		fn(cfg.Clone())
	}
}
