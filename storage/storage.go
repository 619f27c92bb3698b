/*
	Package storage persists assembled body volumes.  Each volume format is provided by
	an Engine that registers itself on import, and every Engine writes through a Store
	so the same format can land on a local filesystem or in a cloud bucket.
*/
package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/blang/semver"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
)

// Engine implements a volume container format.
type Engine interface {
	GetName() string
	GetDescription() string
	GetSemVer() semver.Version

	// Extension is the suffix, including the dot, required of output paths.
	Extension() string

	// CheckConfig returns an error if the engine cannot write with the config.
	CheckConfig(cfg Config) error

	// WriteVolume stores the volume under the given key of the store.  Formats made
	// of many objects use key as a prefix.
	WriteVolume(ctx context.Context, store Store, key string, vol *labels.Volume, cfg Config) error

	// ReadVolume reads back a volume written by WriteVolume.
	ReadVolume(ctx context.Context, store Store, key string) (*labels.Volume, error)
}

// Config holds the settings of a volume write.  Engines ignore settings that
// don't apply to their format.
type Config struct {
	Dataset     string       // name of the dataset within a container
	Compression string       // e.g., "gzip", "zstd", "raw", "snappy", "lz4"
	Level       int          // compression level where supported
	ChunkSize   dvid.Point3d // block size of chunked formats
	Checksum    bool         // add a checksum to each serialized payload
}

// DefaultConfig returns gzip level 1 compression into a "bodies" dataset with
// 64^3 blocks.
func DefaultConfig() Config {
	return Config{
		Dataset:     "bodies",
		Compression: "gzip",
		Level:       1,
		ChunkSize:   dvid.Point3d{64, 64, 64},
	}
}

// ExtensionError is returned when an output path lacks the extension of its format.
type ExtensionError struct {
	Path      string
	Extension string
}

func (e *ExtensionError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("no volume format handles the extension of %q", e.Path)
	}
	return fmt.Sprintf("output path %q must end with %s extension", e.Path, e.Extension)
}

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// RegisterEngine registers an Engine for use by name or extension.  It is
// typically called from the init() of an engine package.
func RegisterEngine(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[e.GetName()] = e
}

// GetEngine returns the registered engine with the given name.
func GetEngine(name string) (Engine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, found := engines[name]
	if !found {
		return nil, fmt.Errorf("no volume format %q registered, available: %s", name, strings.Join(engineNames(), ", "))
	}
	return e, nil
}

// EngineForPath returns the engine whose extension matches the path.
func EngineForPath(p string) (Engine, error) {
	ext := path.Ext(strings.TrimSuffix(p, "/"))
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	for _, e := range engines {
		if e.Extension() == ext {
			return e, nil
		}
	}
	return nil, &ExtensionError{Path: p}
}

// Engines returns all registered engines sorted by name.
func Engines() []Engine {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	var list []Engine
	for _, name := range engineNames() {
		list = append(list, engines[name])
	}
	return list
}

func engineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
