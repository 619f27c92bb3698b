package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/twinj/uuid"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
)

// ErrExists is returned when the output already exists and overwriting wasn't requested.
var ErrExists = errors.New("output already exists")

// IsBucketURL returns true if dest names a bucket object, e.g., gs://bucket/out.n5.
func IsBucketURL(dest string) bool {
	i := strings.Index(dest, "://")
	return i > 0 && !strings.ContainsAny(dest[:i], "/\\")
}

// splitBucketURL separates a destination URL into the bucket URL and the key within it.
// For file:// URLs the bucket is the parent directory.
func splitBucketURL(dest string) (bucketURL, key string, err error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		key = path.Base(u.Path)
		u.Path = path.Dir(u.Path)
	} else {
		key = strings.TrimPrefix(u.Path, "/")
		u.Path = ""
	}
	key = strings.TrimSuffix(key, "/")
	if key == "" || key == "." || key == "/" {
		return "", "", fmt.Errorf("no object name in %q", dest)
	}
	return u.String(), key, nil
}

// SelectEngine returns the named engine, or the engine for the extension of dest if
// no name is given, making sure dest carries the engine's extension.
func SelectEngine(dest, engineName string) (Engine, error) {
	if engineName == "" {
		return EngineForPath(dest)
	}
	e, err := GetEngine(engineName)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.TrimSuffix(dest, "/"), e.Extension()) {
		return nil, &ExtensionError{Path: dest, Extension: e.Extension()}
	}
	return e, nil
}

// WriteVolume writes the volume to a local path or bucket URL.  If engineName is
// empty the format is chosen by the extension of dest.  Nothing is left at dest if
// the write fails: local volumes are staged next to dest and renamed into place,
// while objects written to a bucket are deleted.  An existing dest is only replaced
// if force is true, and only after the new volume has been completely written.
func WriteVolume(ctx context.Context, dest string, vol *labels.Volume, engineName string, cfg Config, force bool) error {
	engine, err := SelectEngine(dest, engineName)
	if err != nil {
		return err
	}
	if err := engine.CheckConfig(cfg); err != nil {
		return fmt.Errorf("%s output: %w", engine.GetName(), err)
	}
	if IsBucketURL(dest) {
		bucketURL, key, err := splitBucketURL(dest)
		if err != nil {
			return err
		}
		store, err := OpenBucketStore(ctx, bucketURL)
		if err != nil {
			return err
		}
		defer store.Close()
		return WriteVolumeToStore(ctx, store, key, vol, engine, cfg, force)
	}
	return writeLocal(ctx, dest, vol, engine, cfg, force)
}

func writeLocal(ctx context.Context, dest string, vol *labels.Volume, engine Engine, cfg Config, force bool) error {
	dest = filepath.Clean(dest)
	_, err := os.Stat(dest)
	exists := err == nil
	if exists && !force {
		return fmt.Errorf("%s: %w", dest, ErrExists)
	}
	dir, base := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}
	staging := filepath.Join(dir, fmt.Sprintf(".%s-staging-%x", base, uuid.NewV4().Bytes()))
	store, err := NewLocalStore(staging)
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := engine.WriteVolume(ctx, store, base, vol, cfg); err != nil {
		return fmt.Errorf("writing %s volume: %w", engine.GetName(), err)
	}
	staged := filepath.Join(staging, base)
	if exists {
		old := filepath.Join(staging, base+".replaced")
		if err := os.Rename(dest, old); err != nil {
			return err
		}
		if err := os.Rename(staged, dest); err != nil {
			if rerr := os.Rename(old, dest); rerr != nil {
				dvid.Criticalf("unable to restore %s after failed replace: %v\n", dest, rerr)
			}
			return err
		}
		return nil
	}
	return os.Rename(staged, dest)
}

// trackingStore records every key put so a failed write can be removed.
type trackingStore struct {
	Store

	mu      sync.Mutex
	written map[string]struct{}
}

func (s *trackingStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.written[key] = struct{}{}
	s.mu.Unlock()
	return s.Store.Put(ctx, key, data)
}

func (s *trackingStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.written))
	for k := range s.written {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// existingKeys returns the keys of the object or object tree named by key.
func existingKeys(ctx context.Context, store Store, key string) ([]string, error) {
	all, err := store.List(ctx, key)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range all {
		if k == key || strings.HasPrefix(k, key+"/") {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// writeTracked writes the volume under key and returns the keys written.  If the
// write fails every object it wrote is deleted.
func writeTracked(ctx context.Context, store Store, key string, vol *labels.Volume, engine Engine, cfg Config) ([]string, error) {
	tracked := &trackingStore{Store: store, written: make(map[string]struct{})}
	if err := engine.WriteVolume(ctx, tracked, key, vol, cfg); err != nil {
		// the write context may be canceled, so cleanup uses its own
		deleteKeys(context.Background(), store, tracked.keys())
		return nil, fmt.Errorf("writing %s volume: %w", engine.GetName(), err)
	}
	return tracked.keys(), nil
}

// deleteKeys removes the objects, logging any that could not be removed.
func deleteKeys(ctx context.Context, store Store, keys []string) {
	for _, k := range keys {
		if err := store.Delete(ctx, k); err != nil && !errors.Is(err, ErrNotFound) {
			dvid.Errorf("unable to delete %s: %v\n", k, err)
		}
	}
}

// WriteVolumeToStore writes the volume under key using the engine.  If the write
// fails every object it wrote is deleted.  An existing volume is replaced only if
// force is true: the new volume is first written under a staging prefix, then
// copied over the old one, and objects of the old volume that weren't overwritten
// are deleted.  A failed staging write leaves the old volume untouched.
func WriteVolumeToStore(ctx context.Context, store Store, key string, vol *labels.Volume, engine Engine, cfg Config, force bool) error {
	existing, err := existingKeys(ctx, store, key)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		_, err := writeTracked(ctx, store, key, vol, engine, cfg)
		return err
	}
	if !force {
		return fmt.Errorf("%s: %w", key, ErrExists)
	}

	staging := path.Join(path.Dir(key), fmt.Sprintf(".%s-staging-%x", path.Base(key), uuid.NewV4().Bytes()))
	staged, err := writeTracked(ctx, store, staging, vol, engine, cfg)
	if err != nil {
		return err
	}
	replaced := make(map[string]struct{}, len(staged))
	for _, k := range staged {
		data, err := store.Get(ctx, k)
		if err == nil {
			final := key + strings.TrimPrefix(k, staging)
			err = store.Put(ctx, final, data)
			replaced[final] = struct{}{}
		}
		if err != nil {
			dvid.Criticalf("replace of %s failed partway; complete volume kept at %s\n", key, staging)
			return fmt.Errorf("replacing %s from %s: %w", key, staging, err)
		}
	}
	var stale []string
	for _, k := range existing {
		if _, found := replaced[k]; !found {
			stale = append(stale, k)
		}
	}
	for _, k := range stale {
		if err := store.Delete(ctx, k); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("removing stale object %s: %w", k, err)
		}
	}
	deleteKeys(ctx, store, staged)
	return nil
}

// ReadVolume reads a volume from a local path or bucket URL, choosing the format
// by extension.
func ReadVolume(ctx context.Context, src string) (*labels.Volume, error) {
	engine, err := EngineForPath(src)
	if err != nil {
		return nil, err
	}
	if IsBucketURL(src) {
		bucketURL, key, err := splitBucketURL(src)
		if err != nil {
			return nil, err
		}
		store, err := OpenBucketStore(ctx, bucketURL)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return engine.ReadVolume(ctx, store, key)
	}
	dir, base := filepath.Split(filepath.Clean(src))
	if dir == "" {
		dir = "."
	}
	return engine.ReadVolume(ctx, &localStore{root: dir}, base)
}
