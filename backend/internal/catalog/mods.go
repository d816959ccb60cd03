package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// BaseGameKey is the entry of a mod list that holds the unmodded game.
const BaseGameKey = "base-game"

// Mod is one launchable build of a modded title. Warning, when set, is shown
// to the player before the build loads.
type Mod struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Link    string `json:"link"`
	Warning string `json:"warning,omitempty"`
}

// HasWarning reports whether the mod carries a non-blank warning.
func (m Mod) HasWarning() bool {
	return strings.TrimSpace(m.Warning) != ""
}

// Mods is a mod list: the base game plus the mods in file order.
type Mods struct {
	Base *Mod  `json:"base,omitempty"`
	Mods []Mod `json:"mods"`
}

// Lookup returns the mod stored under key. BaseGameKey finds the base game.
func (m *Mods) Lookup(key string) (Mod, bool) {
	if key == BaseGameKey {
		if m.Base == nil {
			return Mod{}, false
		}
		return *m.Base, true
	}
	for _, mod := range m.Mods {
		if mod.Key == key {
			return mod, true
		}
	}
	return Mod{}, false
}

// LoadMods decodes a JSON object of mods keyed by mod key, keeping the order
// the keys appear in.
func LoadMods(r io.Reader) (*Mods, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode mods: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("decode mods: expected an object")
	}

	out := &Mods{Mods: []Mod{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode mods: %w", err)
		}
		key, _ := tok.(string)
		var mod Mod
		if err := dec.Decode(&mod); err != nil {
			return nil, fmt.Errorf("decode mod %q: %w", key, err)
		}
		mod.Key = key
		if key == BaseGameKey {
			out.Base = &mod
			continue
		}
		out.Mods = append(out.Mods, mod)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode mods: %w", err)
	}
	return out, nil
}

// LoadModsFS reads the mod list name from fsys.
func LoadModsFS(fsys fs.FS, name string) (*Mods, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open mods: %w", err)
	}
	defer f.Close()
	return LoadMods(f)
}
