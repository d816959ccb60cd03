package gamepad_test

import (
	"go/build"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Packages that run without a native SDL3 library must not link the SDL
// binding, which loads the library at init and panics when it is missing.
func TestCoreDoesNotLinkSDL(t *testing.T) {
	for _, dir := range []string{".", "../remap", "../store", "../hub", "../server", "../catalog"} {
		pkg, err := build.ImportDir(dir, 0)
		require.NoError(t, err, dir)
		for _, imp := range pkg.Imports {
			assert.NotContains(t, imp, "purego-sdl3", "%s imports %s", dir, imp)
			assert.NotContains(t, imp, "sdlreader", "%s imports %s", dir, imp)
		}
	}
}
