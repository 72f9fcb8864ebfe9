package repel

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/gekko3d/repel/fieldrt/rt/shaders"
	"github.com/google/uuid"
)

type AssetId string

// ShaderAsset names a main shader file and the header it includes. The files
// are read on every Source call so edits on disk show up on reload.
type ShaderAsset struct {
	version    uint
	mainPath   string
	headerPath string
	embedded   bool
}

type AssetServer struct {
	mu      sync.Mutex
	shaders map[AssetId]*ShaderAsset

	// fs backs embedded shader assets.
	fs fs.FS
}

type AssetServerModule struct{}

func newAssetServer(fsys fs.FS) *AssetServer {
	return &AssetServer{
		shaders: make(map[AssetId]*ShaderAsset),
		fs:      fsys,
	}
}

// LoadShader registers a shader program. Empty paths select the shaders
// bundled into the binary.
func (server *AssetServer) LoadShader(mainPath, headerPath string) AssetId {
	id := makeAssetId()

	asset := &ShaderAsset{mainPath: mainPath, headerPath: headerPath}
	if mainPath == "" && headerPath == "" {
		asset.embedded = true
		asset.mainPath = shaders.ParticlesFile
		asset.headerPath = shaders.DefinitionsFile
	}

	server.mu.Lock()
	server.shaders[id] = asset
	server.mu.Unlock()

	return id
}

// Source reads the shader and splices its header. Errors wrap shaders.ErrIO
// when a file is missing or empty.
func (server *AssetServer) Source(id AssetId) (string, error) {
	server.mu.Lock()
	asset, ok := server.shaders[id]
	server.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("asset %s: no such shader", id)
	}

	var (
		src string
		err error
	)
	if asset.embedded {
		src, err = shaders.LoadFS(server.fs, asset.mainPath, asset.headerPath)
	} else {
		src, err = shaders.Load(asset.mainPath, asset.headerPath)
	}
	if err != nil {
		return "", err
	}

	server.mu.Lock()
	asset.version++
	server.mu.Unlock()
	return src, nil
}

// Version counts successful Source reads of id.
func (server *AssetServer) Version(id AssetId) uint {
	server.mu.Lock()
	defer server.mu.Unlock()
	if asset, ok := server.shaders[id]; ok {
		return asset.version
	}
	return 0
}

// Label is a readable name for the shader, used as the GPU pipeline label.
func (server *AssetServer) Label(id AssetId) string {
	server.mu.Lock()
	defer server.mu.Unlock()
	if asset, ok := server.shaders[id]; ok {
		return asset.mainPath
	}
	return string(id)
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(newAssetServer(shaders.Embedded))
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
