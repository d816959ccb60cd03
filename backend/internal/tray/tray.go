// Package tray shows the system tray icon and menu.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"github.com/rs/zerolog"
)

// Actions are the callbacks behind the tray menu.
type Actions struct {
	Reset    func()
	Shutdown func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	actions      Actions
	log          zerolog.Logger
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuReset    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a tray whose "Open Browser" item opens url.
func New(url string, actions Actions, log zerolog.Logger) *Tray {
	return &Tray{
		url:     url,
		actions: actions,
		log:     log.With().Str("subsystem", "tray").Logger(),
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padremap")
	systray.SetTooltip("padremap - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Browser", "Open the bridge page")
	t.menuReset = systray.AddMenuItem("Reset Bindings", "Restore the default controller configuration")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	t.log.Info().Msg("system tray initialized")
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuReset.ClickedCh:
			if !t.shuttingDown.Load() && t.actions.Reset != nil {
				t.actions.Reset()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info().Msg("system tray exiting")
}

func (t *Tray) openBrowser() {
	if err := OpenBrowser(t.url); err != nil {
		t.log.Warn().Err(err).Msg("failed to open browser")
	}
}

// OpenBrowser opens url in the default web browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
