// Package catalog indexes the game portal's titles for fuzzy search and the
// weekly featured rotation.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
)

// Game is one title of the portal.
type Game struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
	Link     string   `json:"link"`
	Cover    string   `json:"cover,omitempty"`
	Featured bool     `json:"featured,omitempty"`
}

// Result is a search hit.
type Result struct {
	Game
	Score float64 `json:"score"`
}

// Catalog is an immutable list of games.
type Catalog struct {
	games []Game
}

// New builds a catalog from games. Tags are lowercased and trimmed, and a
// missing ID is derived from the name.
func New(games []Game) *Catalog {
	c := &Catalog{games: make([]Game, len(games))}
	for i, g := range games {
		tags := make([]string, 0, len(g.Tags))
		for _, t := range g.Tags {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				tags = append(tags, t)
			}
		}
		g.Tags = tags
		if g.ID == "" {
			g.ID = slug(g.Name)
		}
		c.games[i] = g
	}
	return c
}

// Load decodes a JSON array of games.
func Load(r io.Reader) (*Catalog, error) {
	var games []Game
	if err := json.NewDecoder(r).Decode(&games); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(games), nil
}

// LoadFS reads the catalog file name from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Games returns every game in catalog order.
func (c *Catalog) Games() []Game {
	out := make([]Game, len(c.games))
	copy(out, c.games)
	return out
}

// Lookup finds a game by ID or, ignoring case, by name.
func (c *Catalog) Lookup(key string) (Game, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Game{}, false
	}
	id := slug(key)
	for _, g := range c.games {
		if g.ID == key || g.ID == id || strings.EqualFold(g.Name, key) {
			return g, true
		}
	}
	return Game{}, false
}

// Len returns the number of games.
func (c *Catalog) Len() int { return len(c.games) }

// Tags returns all distinct tags, sorted.
func (c *Catalog) Tags() []string {
	seen := make(map[string]bool)
	for _, g := range c.games {
		for _, t := range g.Tags {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ParseTags splits a tag attribute. Commas separate multi-word tags; without
// a comma, whitespace separates single-word tags.
func ParseTags(s string) []string {
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
