package server

import (
	"github.com/soar/padremap/backend/internal/remap"
	"github.com/soar/padremap/backend/internal/store"
)

// controller carries settings UI commands from a bridge page to the store
// and the rebinder.
type controller struct {
	store    *store.Store
	rebinder *remap.Rebinder
}

func (c *controller) StartRebind(button int) error {
	return c.rebinder.Start(button)
}

func (c *controller) CancelRebind() error {
	return c.rebinder.Cancel()
}

func (c *controller) Capture(in remap.Input) error {
	_, err := c.rebinder.Capture(in)
	return err
}

// ApplySettings previews slider changes; they persist on save.
func (c *controller) ApplySettings(p remap.Partial) error {
	return c.store.Apply(p)
}

func (c *controller) SaveSettings() {
	c.store.Save()
}
