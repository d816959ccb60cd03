package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padremap/backend/internal/catalog"
	"github.com/soar/padremap/backend/internal/gamepad"
	"github.com/soar/padremap/backend/internal/hub"
	"github.com/soar/padremap/backend/internal/remap"
	"github.com/soar/padremap/backend/internal/store"
)

type fakePads []gamepad.Pad

func (f fakePads) Gamepads() []gamepad.Pad { return f }

type fixture struct {
	server   *Server
	hub      *hub.Hub
	store    *store.Store
	rebinder *remap.Rebinder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	h := hub.NewHub(log)
	st := store.New(store.NewMemoryJar(), log)
	st.Load()
	rb := remap.NewRebinder(st, h, log)

	games := catalog.New([]catalog.Game{
		{Name: "Slope", Tags: []string{"arcade"}},
		{Name: "Drift Boss", Tags: []string{"racing", "arcade"}},
	})
	frontend := fstest.MapFS{
		"index.html": {Data: []byte("<!doctype html>\n<html>\n  <body>\n    <p>  bridge  </p>\n  </body>\n</html>\n")},
		"bridge.js":  {Data: []byte("const answer = 40 + 2;\n")},
	}

	mods, err := catalog.LoadMods(strings.NewReader(`{
		"base-game": {"name": "Base", "link": "/fnf/base/"},
		"loud": {"name": "Loud Mod", "link": "/fnf/loud/", "warning": "Loud audio"}
	}`))
	require.NoError(t, err)

	srv, err := New(Deps{
		Hub:      h,
		Store:    st,
		Rebinder: rb,
		Pads:     fakePads{{Index: 0, ID: "Xbox Wireless Controller", Name: "Xbox Wireless Controller"}},
		Catalog:  games,
		Mods:     mods,
		Frontend: frontend,
	}, ":0", log)
	require.NoError(t, err)
	return &fixture{server: srv, hub: h, store: st, rebinder: rb}
}

func (f *fixture) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func configCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == store.CookieName {
			return c
		}
	}
	return nil
}

func TestGetConfigSetsCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := decode[remap.Config](t, rec)
	assert.Equal(t, remap.DefaultConfig(), cfg)

	cookie := configCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "/", cookie.Path)

	p, err := store.Decode(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, remap.DefaultConfig(), remap.DefaultConfig().Merge(p))
}

func TestPatchConfigMerges(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/config", `{"deadzone":0.3,"buttonMappings":{"0":"x"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cfg := decode[remap.Config](t, rec)
	assert.Equal(t, 0.3, cfg.Deadzone)
	assert.Equal(t, "x", cfg.ButtonMappings[0])
	assert.Equal(t, "w", cfg.ButtonMappings[1])
	assert.Equal(t, remap.DefaultConfig().Sensitivity, cfg.Sensitivity)
	assert.Equal(t, cfg, f.store.Config())
}

func TestPatchConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/config", `{"deadzone":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/config", `{"buttonMappings":{"3":"too long"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/config", `{"deadzone":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, remap.DefaultConfig(), f.store.Config())
}

func TestResetConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Update(remap.Partial{ButtonMappings: map[int]string{2: "z"}}))

	rec := f.do(t, http.MethodDelete, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, remap.DefaultConfig(), decode[remap.Config](t, rec))

	rec = f.do(t, http.MethodPost, "/api/config/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, configCookie(rec))
}

func TestImportBrowserCookie(t *testing.T) {
	f := newFixture(t)

	cfg := remap.DefaultConfig()
	cfg.Deadzone = 0.25
	cfg.ButtonMappings[4] = "+"
	value, err := store.Encode(cfg)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/config", "", &http.Cookie{Name: store.CookieName, Value: value})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[remap.Config](t, rec)
	assert.Equal(t, 0.25, got.Deadzone)
	assert.Equal(t, "+", got.ButtonMappings[4])

	// Once persisted, the browser copy no longer overrides.
	cfg.Deadzone = 0.5
	value, err = store.Encode(cfg)
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/config", "", &http.Cookie{Name: store.CookieName, Value: value})
	assert.Equal(t, 0.25, decode[remap.Config](t, rec).Deadzone)
}

func TestRebindFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/rebind/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RebindStatus{Listening: true, Button: 3}, decode[RebindStatus](t, rec))

	rec = f.do(t, http.MethodPost, "/api/rebind/4", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/capture", `{"key":"g"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/rebind", "")
	assert.Equal(t, RebindStatus{}, decode[RebindStatus](t, rec))

	rec = f.do(t, http.MethodGet, "/api/bindings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]Binding](t, rec)
	require.Len(t, rows, gamepad.StandardButtons)
	assert.Equal(t, Binding{Button: 3, Name: "Y Button / Triangle", Binding: "g", Display: "G"}, rows[3])
	assert.Equal(t, "g", f.store.Config().ButtonMappings[3])
}

func TestRebindMouseAndCancel(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/rebind/0", "").Code)
	rec := f.do(t, http.MethodPost, "/api/capture", `{"mouseButton":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MouseRight", f.store.Config().ButtonMappings[0])

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/rebind/1", "").Code)
	rec = f.do(t, http.MethodDelete, "/api/rebind", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "w", f.store.Config().ButtonMappings[1])

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodDelete, "/api/rebind", "").Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/capture", `{"key":"k"}`).Code)
}

func TestRebindBadButton(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/rebind/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/rebind/abc", "").Code)
}

func TestGamepads(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/gamepads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pads := decode[[]gamepad.Pad](t, rec)
	require.Len(t, pads, 1)
	assert.Equal(t, "Xbox Wireless Controller", pads[0].Name)
}

func TestGames(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/games?q=slope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]catalog.Result](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "Slope", results[0].Name)

	rec = f.do(t, http.MethodGet, "/api/games?tags=racing,arcade&all=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]catalog.Result](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/games?q=nothing-like-it", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/games?all=maybe", "").Code)

	rec = f.do(t, http.MethodGet, "/api/games/featured?n=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]catalog.Game](t, rec), 1)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/games/featured?n=-1", "").Code)

	rec = f.do(t, http.MethodGet, "/api/games/suggest?q=arc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []catalog.Suggestion{{Type: "tag", Value: "arcade", Count: 2}}, decode[[]catalog.Suggestion](t, rec))
}

func TestStaticFrontendIsMinified(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<p>bridge</p>")

	rec = f.do(t, http.MethodGet, "/bridge.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "\n")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/missing.css", "").Code)
}

func TestUnknownPageServesIndex(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/play/slope", "/settings", "/games/drift-boss/"} {
		rec := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "<p>bridge</p>", target)
	}

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/nothing", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/img/logo.png", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/settings", "").Code)
}

func TestGameByIDOrName(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/games/drift-boss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Drift Boss", decode[catalog.Game](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/api/games/slope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Slope", decode[catalog.Game](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/api/games/Drift%20Boss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "drift-boss", decode[catalog.Game](t, rec).ID)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/games/tetris", "").Code)
}

func TestMods(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/mods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[catalog.Mods](t, rec)
	require.NotNil(t, list.Base)
	assert.Equal(t, "Base", list.Base.Name)
	require.Len(t, list.Mods, 1)
	assert.Equal(t, "loud", list.Mods[0].Key)

	rec = f.do(t, http.MethodGet, "/api/mods/base-game", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/fnf/base/", decode[catalog.Mod](t, rec).Link)

	rec = f.do(t, http.MethodPost, "/api/mods/loud/launch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Loud audio", decode[catalog.Mod](t, rec).Warning)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/mods/none", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/mods/none/launch", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "padremap_")
}

func TestWebSocketBridge(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.hub.Run(ctx)

	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: hub.TypeTarget, Ready: true}))
	require.Eventually(t, f.hub.Ready, time.Second, 10*time.Millisecond)

	require.NoError(t, f.hub.DispatchKey(remap.KeyEvent{Type: remap.EventKeyDown, Key: "w", Code: "KeyW", KeyCode: 87, Which: 87, Bubbles: true, Cancelable: true}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type  string         `json:"type"`
		Event remap.KeyEvent `json:"event"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, hub.TypeInput, msg.Type)
	assert.Equal(t, "KeyW", msg.Event.Code)

	// Settings commands from the page reach the store.
	dz := 0.4
	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: hub.TypeSettings, Settings: &remap.Partial{Deadzone: &dz}}))
	require.Eventually(t, func() bool { return f.store.Config().Deadzone == 0.4 }, time.Second, 10*time.Millisecond)
}
