/*
	Package labelvol stores a body volume as a single object: a small msgpack header
	followed by each plane serialized and compressed the same way DVID stores label
	blocks.  It suits volumes that are moved around whole, e.g., between buckets.
*/
package labelvol

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/storage"
)

const (
	magic         = "DVOL"
	formatVersion = 1
)

func init() {
	ver, err := semver.Make("0.1.0")
	if err != nil {
		dvid.Errorf("Unable to make semver in labelvol: %v\n", err)
	}
	e := Engine{"labelvol", "Single object DVID-serialized label planes", ver}
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
	return ".dvol"
}

func (e Engine) CheckConfig(cfg storage.Config) error {
	_, err := dvid.ParseCompression(cfg.Compression)
	return err
}

func (e Engine) WriteVolume(ctx context.Context, store storage.Store, key string, vol *labels.Volume, cfg storage.Config) error {
	timedLog := dvid.NewTimeLog()
	compress, err := dvid.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}
	checksum := dvid.NoChecksum
	if cfg.Checksum {
		checksum = dvid.CRC32
	}
	hdr := header{
		Version:     formatVersion,
		Width:       int32(vol.Width),
		Height:      int32(vol.Height),
		Planes:      make([]int32, len(vol.Planes)),
		Compression: compress.Name(),
		Checksum:    cfg.Checksum,
	}
	for k, z := range vol.Planes {
		hdr.Planes[k] = int32(z)
	}

	planes := make([][]byte, vol.Depth())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for k := range planes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img := vol.Plane(k)
			raw := make([]byte, len(img.Data)*8)
			for i, v := range img.Data {
				binary.LittleEndian.PutUint64(raw[i*8:], v)
			}
			s, err := dvid.SerializeData(raw, compress, checksum)
			if err != nil {
				return fmt.Errorf("%s: %w", vol.Planes[k], err)
			}
			planes[k] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	hbytes, err := hdr.MarshalMsg(nil)
	if err != nil {
		return err
	}
	total := len(magic) + 4 + len(hbytes)
	for _, p := range planes {
		total += 4 + len(p)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(hbytes)))
	buf = append(buf, hbytes...)
	for _, p := range planes {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p)))
		buf = append(buf, p...)
	}
	if err := store.Put(ctx, key, buf); err != nil {
		return err
	}
	timedLog.Infof("Wrote %d planes as %s (%s compression) from %s of labels",
		len(planes), humanize.Bytes(uint64(len(buf))), compress, humanize.Bytes(vol.NumBytes()))
	return nil
}

func (e Engine) ReadVolume(ctx context.Context, store storage.Store, key string) (*labels.Volume, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) < len(magic)+4 || string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%s is not a labelvol object", key)
	}
	data = data[len(magic):]
	hlen := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(hlen) > uint64(len(data)) {
		return nil, fmt.Errorf("%s: truncated header", key)
	}
	var hdr header
	if _, err := hdr.UnmarshalMsg(data[:hlen]); err != nil {
		return nil, fmt.Errorf("%s: bad header: %w", key, err)
	}
	if hdr.Version != formatVersion {
		return nil, fmt.Errorf("%s: unsupported labelvol version %d", key, hdr.Version)
	}
	data = data[hlen:]

	vol := &labels.Volume{
		Width:  int(hdr.Width),
		Height: int(hdr.Height),
		Planes: make([]labels.PlaneIndex, len(hdr.Planes)),
		Data:   make([]uint64, int(hdr.Width)*int(hdr.Height)*len(hdr.Planes)),
	}
	planeBytes := vol.Width * vol.Height * 8
	for k, z := range hdr.Planes {
		vol.Planes[k] = labels.PlaneIndex(z)
		if len(data) < 4 {
			return nil, fmt.Errorf("%s: truncated at plane %d", key, z)
		}
		plen := binary.LittleEndian.Uint32(data)
		data = data[4:]
		if uint64(plen) > uint64(len(data)) {
			return nil, fmt.Errorf("%s: truncated at plane %d", key, z)
		}
		raw, _, err := dvid.DeserializeData(data[:plen], true)
		if err != nil {
			return nil, fmt.Errorf("%s: plane %d: %w", key, z, err)
		}
		if len(raw) != planeBytes {
			return nil, fmt.Errorf("%s: plane %d has %d bytes, expected %d", key, z, len(raw), planeBytes)
		}
		dst := vol.Plane(k).Data
		for i := range dst {
			dst[i] = binary.LittleEndian.Uint64(raw[i*8:])
		}
		data = data[plen:]
	}
	return vol, nil
}
