package main

import (
	"embed"
	"io/fs"
)

// Data files shipped with the bridge page.
const (
	bundledCatalog = "games.json"
	bundledMods    = "fnf-mods.json"
)

//go:embed all:frontend
var frontendFiles embed.FS

// frontendFS returns the bridge page assets rooted at "frontend".
func frontendFS() fs.FS {
	sub, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		// The directive above guarantees the directory exists.
		panic(err)
	}
	return sub
}
