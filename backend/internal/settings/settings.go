// Package settings resolves process settings from flags, PADREMAP_*
// environment variables and an optional settings file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output sinks for synthesized input.
const (
	OutputBrowser = "browser"
	OutputUinput  = "uinput"
)

const envPrefix = "PADREMAP"

var ErrInvalidOutput = errors.New("invalid output")

// Settings are the resolved process settings.
type Settings struct {
	Addr         string
	LogLevel     string
	PollInterval time.Duration
	Output       string
	DataDir      string
	Catalog      string
	ConfigFile   string
	NoTray       bool
}

// Loader owns the viper instance backing Settings.
type Loader struct {
	v     *viper.Viper
	flags *pflag.FlagSet
}

// NewLoader defines the command-line flags.
func NewLoader(name string) *Loader {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.Duration("poll-interval", 16*time.Millisecond, "gamepad poll interval")
	fs.String("output", OutputBrowser, "input sink: browser or uinput")
	fs.String("data-dir", defaultDataDir(), "directory for persisted configuration")
	fs.String("catalog", "", "games catalog JSON file (empty uses the built-in list)")
	fs.String("config", "", "settings file (yaml, toml or json)")
	fs.Bool("no-tray", false, "do not show the system tray icon")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, flags: fs}
}

// FlagSet exposes the flags, mainly for usage output.
func (l *Loader) FlagSet() *pflag.FlagSet {
	return l.flags
}

// Load parses args and reads the settings file if one is named.
func (l *Loader) Load(args []string) (Settings, error) {
	if err := l.flags.Parse(args); err != nil {
		return Settings{}, err
	}
	if err := l.v.BindPFlags(l.flags); err != nil {
		return Settings{}, fmt.Errorf("bind flags: %w", err)
	}
	if file := l.v.GetString("config"); file != "" {
		l.v.SetConfigFile(file)
		if err := l.v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings file %s: %w", file, err)
		}
	}
	return l.current()
}

func (l *Loader) current() (Settings, error) {
	s := Settings{
		Addr:         l.v.GetString("addr"),
		LogLevel:     l.v.GetString("log-level"),
		PollInterval: l.v.GetDuration("poll-interval"),
		Output:       strings.ToLower(l.v.GetString("output")),
		DataDir:      l.v.GetString("data-dir"),
		Catalog:      l.v.GetString("catalog"),
		ConfigFile:   l.v.ConfigFileUsed(),
		NoTray:       l.v.GetBool("no-tray"),
	}
	if s.Output != OutputBrowser && s.Output != OutputUinput {
		return Settings{}, fmt.Errorf("%w %q: want %s or %s", ErrInvalidOutput, s.Output, OutputBrowser, OutputUinput)
	}
	if s.PollInterval <= 0 {
		s.PollInterval = 16 * time.Millisecond
	}
	return s, nil
}

// Watch calls fn with the re-read settings whenever the settings file
// changes. It does nothing when no file was loaded.
func (l *Loader) Watch(fn func(Settings, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		fn(l.current())
	})
	l.v.WatchConfig()
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "padremap")
}
