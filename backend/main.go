package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/padremap/backend/internal/catalog"
	"github.com/soar/padremap/backend/internal/console"
	"github.com/soar/padremap/backend/internal/hub"
	"github.com/soar/padremap/backend/internal/logging"
	"github.com/soar/padremap/backend/internal/remap"
	"github.com/soar/padremap/backend/internal/server"
	"github.com/soar/padremap/backend/internal/settings"
	"github.com/soar/padremap/backend/internal/store"
	"github.com/soar/padremap/backend/internal/tray"
	"github.com/soar/padremap/backend/internal/uinput"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "padremap:", err)
		os.Exit(1)
	}
}

func run() error {
	interactive := console.IsRunningFromConsole()

	loader := settings.NewLoader("padremap")
	cfg, err := loader.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logOut, err := logOutput(interactive, cfg.DataDir)
	if err != nil {
		return err
	}
	defer logOut.Close()
	log := logging.New(level, logOut)

	loader.Watch(func(s settings.Settings, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("settings file reload failed")
			return
		}
		lvl, err := logging.ParseLevel(s.LogLevel)
		if err != nil {
			log.Warn().Err(err).Msg("ignoring invalid log level")
			return
		}
		logging.SetLevel(lvl)
		log.Info().Str("level", lvl.String()).Msg("log level changed")
	})

	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer cancel()
	consoleShutdown := make(chan struct{})
	reregister := console.SetupConsoleHandler(consoleShutdown)

	jar, err := store.OpenFileJar(cfg.DataDir, log)
	if err != nil {
		return err
	}
	defer jar.Close()

	st := store.New(jar, log)
	st.Load()
	jar.OnChange(st.Load)
	if err := jar.Watch(); err != nil {
		log.Warn().Err(err).Msg("config file watch disabled")
	}

	h := hub.NewHub(log)
	go h.Run(ctx)
	st.Subscribe(h.PublishConfig)
	h.PublishConfig(st.Config())

	var target remap.Target = h
	if cfg.Output == settings.OutputUinput {
		vt, err := uinput.New(log)
		if err != nil {
			return fmt.Errorf("uinput output: %w", err)
		}
		defer vt.Close()
		target = vt
	}

	reader := newPadReader(log, cfg.PollInterval)
	reader.OnInit(reregister)

	engine := remap.NewEngine(reader, st, target, log,
		remap.WithNotifier(h),
		remap.WithFrameInterval(cfg.PollInterval),
	)
	rebinder := remap.NewRebinder(st, h, log)
	rebinder.OnChange(h.PublishRebind)

	assets := frontendFS()
	games, err := loadCatalog(cfg.Catalog, assets)
	if err != nil {
		return err
	}
	log.Info().Int("games", games.Len()).Msg("game catalog loaded")
	mods, err := catalog.LoadModsFS(assets, bundledMods)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Hub:      h,
		Store:    st,
		Rebinder: rebinder,
		Pads:     reader,
		Catalog:  games,
		Mods:     mods,
		Frontend: assets,
	}, cfg.Addr, log)
	if err != nil {
		return err
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// The SDL reader locks its goroutine to an OS thread.
	readerDone := make(chan struct{})
	go func() {
		reader.Run(ctx)
		close(readerDone)
	}()
	engineDone := make(chan struct{})
	go func() {
		engine.Run(ctx, reader.Events())
		close(engineDone)
	}()

	url := localURL(cfg.Addr)
	log.Info().Str("url", url).Str("output", cfg.Output).Msg("padremap started")

	var t *tray.Tray
	if runtime.GOOS == "windows" && !cfg.NoTray {
		t = tray.New(url, tray.Actions{Reset: st.Reset, Shutdown: cancel}, log)
		go t.Run(tray.Icon())
		if !interactive {
			if err := tray.OpenBrowser(url); err != nil {
				log.Warn().Err(err).Msg("failed to open browser")
			}
		}
	} else {
		log.Info().Msg("Press Ctrl+C to exit")
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case <-consoleShutdown:
		log.Info().Msg("shutting down")
	case err := <-serverErrCh:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}
	cancel()

	<-engineDone
	<-readerDone
	st.Save()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if t != nil {
		t.Quit()
	}

	log.Info().Msg("padremap stopped")
	return nil
}

// logOutput is stderr for terminal runs and a log file in the data
// directory when started without a console.
func logOutput(interactive bool, dataDir string) (io.WriteCloser, error) {
	if interactive {
		return nopCloser{os.Stderr}, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "padremap.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func loadCatalog(path string, frontend fs.FS) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.LoadFS(frontend, bundledCatalog)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return catalog.Load(f)
}

func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
