package repel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gekko3d/repel/fieldrt/rt/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_EmbeddedShader(t *testing.T) {
	server := newAssetServer(shaders.Embedded)
	id := server.LoadShader("", "")

	src, err := server.Source(id)
	require.NoError(t, err)
	assert.Equal(t, shaders.Default(), src)
	assert.Equal(t, uint(1), server.Version(id))
	assert.Equal(t, shaders.ParticlesFile, server.Label(id))
}

func TestAssetServer_IdsAreUnique(t *testing.T) {
	server := newAssetServer(shaders.Embedded)
	a := server.LoadShader("", "")
	b := server.LoadShader("", "")
	assert.NotEqual(t, a, b)
}

func TestAssetServer_DiskShaderReloadsEdits(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.wgsl")
	headerPath := filepath.Join(dir, "defs.wgsl")
	require.NoError(t, os.WriteFile(mainPath, []byte("#include \"defs.wgsl\"\nfn a() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(headerPath, []byte("const K = 1;"), 0o644))

	server := newAssetServer(shaders.Embedded)
	id := server.LoadShader(mainPath, headerPath)

	src, err := server.Source(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "const K = 1;"))

	require.NoError(t, os.WriteFile(headerPath, []byte("const K = 2;"), 0o644))
	src, err = server.Source(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "const K = 2;"))
	assert.Equal(t, uint(2), server.Version(id))
}

func TestAssetServer_MissingHeader(t *testing.T) {
	fsys := fstest.MapFS{
		shaders.ParticlesFile: {Data: []byte("fn a() {}")},
	}
	server := newAssetServer(fsys)
	id := server.LoadShader("", "")

	_, err := server.Source(id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shaders.ErrIO))
	assert.Equal(t, uint(0), server.Version(id))
}

func TestAssetServer_UnknownId(t *testing.T) {
	server := newAssetServer(shaders.Embedded)
	_, err := server.Source("nope")
	assert.ErrorContains(t, err, "no such shader")
	assert.Equal(t, "nope", server.Label("nope"))
}
