package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/soar/padremap/backend/internal/catalog"
	"github.com/soar/padremap/backend/internal/hub"
	"github.com/soar/padremap/backend/internal/remap"
	"github.com/soar/padremap/backend/internal/store"
)

// Deps are the components the HTTP surface exposes.
type Deps struct {
	Hub      *hub.Hub
	Store    *store.Store
	Rebinder *remap.Rebinder
	Pads     remap.Source
	Catalog  *catalog.Catalog
	Mods     *catalog.Mods
	Frontend fs.FS
}

type Server struct {
	deps       Deps
	addr       string
	log        zerolog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

func New(deps Deps, addr string, log zerolog.Logger) (*Server, error) {
	s := &Server{
		deps: deps,
		addr: addr,
		log:  log.With().Str("subsystem", "http").Logger(),
	}

	static, err := newStaticHandler(deps.Frontend)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.SetLogger(
		logger.WithLogger(func(_ *gin.Context, _ zerolog.Logger) zerolog.Logger {
			return s.log
		}),
		logger.WithSkipPath([]string{"/ws", "/metrics"}),
		logger.WithDefaultLevel(zerolog.DebugLevel),
	))

	r.GET("/ws", s.handleWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	cfg := api.Group("/config", s.importCookie)
	cfg.GET("", s.getConfig)
	cfg.PATCH("", s.patchConfig)
	cfg.DELETE("", s.resetConfig)
	cfg.POST("/save", s.saveConfig)

	api.GET("/bindings", s.getBindings)
	api.GET("/rebind", s.getRebind)
	api.POST("/rebind/:button", s.startRebind)
	api.POST("/capture", s.captureRebind)
	api.DELETE("/rebind", s.cancelRebind)

	api.GET("/gamepads", s.getGamepads)
	api.GET("/games", s.searchGames)
	api.GET("/games/featured", s.featuredGames)
	api.GET("/games/suggest", s.suggestGames)
	api.GET("/games/:id", s.getGame)
	api.GET("/mods", s.listMods)
	api.GET("/mods/:key", s.getMod)
	api.POST("/mods/:key/launch", s.launchMod)

	r.NoRoute(gin.WrapH(static))

	s.router = r
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info().Msg("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
