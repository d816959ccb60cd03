package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soar/padremap/backend/internal/catalog"
	"github.com/soar/padremap/backend/internal/gamepad"
	"github.com/soar/padremap/backend/internal/remap"
	"github.com/soar/padremap/backend/internal/store"
)

const (
	defaultFeatured    = 3
	defaultSuggestions = 5
)

// Binding describes one row of the bindings table.
type Binding struct {
	Button  int    `json:"button"`
	Name    string `json:"name"`
	Binding string `json:"binding"`
	Display string `json:"display"`
}

// RebindStatus reports the rebinding state machine.
type RebindStatus struct {
	Listening bool `json:"listening"`
	Button    int  `json:"button"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, remap.ErrRebindActive), errors.Is(err, remap.ErrNotListening):
		return http.StatusConflict
	case errors.Is(err, remap.ErrButtonOutOfRange),
		errors.Is(err, remap.ErrInvalidBinding),
		errors.Is(err, remap.ErrInvalidDeadzone),
		errors.Is(err, remap.ErrInvalidSensitivity),
		errors.Is(err, remap.ErrUnsupportedKey):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// importCookie adopts a configuration cookie the browser still carries from
// before anything was persisted on this side.
func (s *Server) importCookie(c *gin.Context) {
	if cookie, err := c.Request.Cookie(store.CookieName); err == nil && cookie.Value != "" {
		if s.deps.Store.Import(cookie.Value) {
			s.log.Info().Msg("adopted config cookie from browser")
		}
	}
	c.Next()
}

func (s *Server) respondConfig(c *gin.Context) {
	if cookie := s.deps.Store.Cookie(); cookie != nil {
		http.SetCookie(c.Writer, cookie)
	}
	c.JSON(http.StatusOK, s.deps.Store.Config())
}

func (s *Server) getConfig(c *gin.Context) {
	s.respondConfig(c)
}

func (s *Server) patchConfig(c *gin.Context) {
	var p remap.Partial
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Store.Update(p); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	s.respondConfig(c)
}

func (s *Server) resetConfig(c *gin.Context) {
	s.deps.Store.Reset()
	s.respondConfig(c)
}

func (s *Server) saveConfig(c *gin.Context) {
	s.deps.Store.Save()
	s.respondConfig(c)
}

func (s *Server) getBindings(c *gin.Context) {
	cfg := s.deps.Store.Config()
	out := make([]Binding, 0, gamepad.StandardButtons)
	for i := 0; i < gamepad.StandardButtons; i++ {
		b, _ := cfg.Binding(i)
		out = append(out, Binding{
			Button:  i,
			Name:    remap.ButtonName(i),
			Binding: b,
			Display: remap.DisplayName(b),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) rebindStatus() RebindStatus {
	state, button := s.deps.Rebinder.State()
	return RebindStatus{Listening: state == remap.Listening, Button: button}
}

func (s *Server) getRebind(c *gin.Context) {
	c.JSON(http.StatusOK, s.rebindStatus())
}

func (s *Server) startRebind(c *gin.Context) {
	button, err := strconv.Atoi(c.Param("button"))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Rebinder.Start(button); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, s.rebindStatus())
}

func (s *Server) captureRebind(c *gin.Context) {
	var in remap.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	binding, err := s.deps.Rebinder.Capture(in)
	if err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"binding": binding, "cancelled": binding == ""})
}

func (s *Server) cancelRebind(c *gin.Context) {
	if err := s.deps.Rebinder.Cancel(); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, s.rebindStatus())
}

func (s *Server) getGamepads(c *gin.Context) {
	pads := s.deps.Pads.Gamepads()
	if pads == nil {
		pads = []gamepad.Pad{}
	}
	c.JSON(http.StatusOK, pads)
}

func (s *Server) searchGames(c *gin.Context) {
	opts := catalog.SearchOptions{}
	if v := c.Query("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		opts.Threshold = t
	}
	if v := c.Query("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		opts.MatchAll = all
	}
	results := s.deps.Catalog.Search(c.Query("q"), catalog.ParseTags(c.Query("tags")), opts)
	if results == nil {
		results = []catalog.Result{}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) featuredGames(c *gin.Context) {
	n, ok := intQuery(c, "n", defaultFeatured)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.deps.Catalog.Featured(n, time.Now()))
}

func (s *Server) suggestGames(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultSuggestions)
	if !ok {
		return
	}
	out := s.deps.Catalog.Suggestions(c.Query("q"), limit)
	if out == nil {
		out = []catalog.Suggestion{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getGame(c *gin.Context) {
	g, ok := s.deps.Catalog.Lookup(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, errors.New("no such game"))
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) listMods(c *gin.Context) {
	if s.deps.Mods == nil {
		c.JSON(http.StatusOK, catalog.Mods{Mods: []catalog.Mod{}})
		return
	}
	c.JSON(http.StatusOK, s.deps.Mods)
}

func (s *Server) lookupMod(c *gin.Context) (catalog.Mod, bool) {
	if s.deps.Mods != nil {
		if mod, ok := s.deps.Mods.Lookup(c.Param("key")); ok {
			return mod, true
		}
	}
	abort(c, http.StatusNotFound, errors.New("no such mod"))
	return catalog.Mod{}, false
}

func (s *Server) getMod(c *gin.Context) {
	if mod, ok := s.lookupMod(c); ok {
		c.JSON(http.StatusOK, mod)
	}
}

// launchMod shows the mod's warning, if any, as a toast on every bridge and
// returns the build to load.
func (s *Server) launchMod(c *gin.Context) {
	mod, ok := s.lookupMod(c)
	if !ok {
		return
	}
	s.log.Info().Str("mod", mod.Key).Msg("launching mod")
	if mod.HasWarning() {
		s.deps.Hub.Notify("Warning: " + mod.Warning)
	}
	c.JSON(http.StatusOK, mod)
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		abort(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return n, true
}
