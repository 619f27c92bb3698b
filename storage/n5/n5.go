/*
	Package n5 stores body volumes as N5 containers: a directory tree of JSON attributes
	and chunked, compressed blocks readable by the N5, zarr and neuroglancer tooling.
*/
package n5

import (
	"context"
	"fmt"

	"github.com/blang/semver"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/storage"
)

// Version is the N5 specification version written to the container root.
const Version = "2.5.0"

func init() {
	ver, err := semver.Make("0.1.0")
	if err != nil {
		dvid.Errorf("Unable to make semver in n5: %v\n", err)
	}
	e := Engine{"n5", "N5 chunked label volume", ver}
	storage.RegisterEngine(e)
}

// --- Engine Implementation ------

type Engine struct {
	name   string
	desc   string
	semver semver.Version
}

func (e Engine) GetName() string {
	return e.name
}

func (e Engine) GetDescription() string {
	return e.desc
}

func (e Engine) GetSemVer() semver.Version {
	return e.semver
}

func (e Engine) String() string {
	return fmt.Sprintf("%s [%s]", e.name, e.semver)
}

func (e Engine) Extension() string {
	return ".n5"
}

func (e Engine) CheckConfig(cfg storage.Config) error {
	w, err := newWriter(nil, "", cfg)
	if err != nil {
		return err
	}
	w.codec.close()
	return nil
}

func (e Engine) WriteVolume(ctx context.Context, store storage.Store, key string, vol *labels.Volume, cfg storage.Config) error {
	w, err := newWriter(store, key, cfg)
	if err != nil {
		return err
	}
	return w.write(ctx, vol)
}

func (e Engine) ReadVolume(ctx context.Context, store storage.Store, key string) (*labels.Volume, error) {
	return readVolume(ctx, store, key)
}
