package n5

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/storage"
)

const (
	modeDefault = 0
	numDims     = 3
	headerSize  = 4 + 4*numDims
)

var defaultBlockSize = dvid.Point3d{64, 64, 64}

// codec compresses and decompresses block payloads.
type codec struct {
	compression
	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

func newCodec(c compression) (*codec, error) {
	cd := &codec{compression: c}
	switch c.Type {
	case "raw":
	case "gzip":
		if c.Level < -1 || c.Level > 9 {
			return nil, fmt.Errorf("bad gzip level %d", c.Level)
		}
	case "zstd":
		var err error
		level := zstd.SpeedDefault
		if c.Level != 0 {
			level = zstd.EncoderLevelFromZstd(c.Level)
		}
		if cd.zenc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(level)); err != nil {
			return nil, err
		}
		if cd.zdec, err = zstd.NewReader(nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported N5 compression %q", c.Type)
	}
	return cd, nil
}

func (cd *codec) compress(data []byte) ([]byte, error) {
	switch cd.Type {
	case "gzip":
		return dvid.GzipBytes(data, cd.Level)
	case "zstd":
		return cd.zenc.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
	}
	return data, nil
}

func (cd *codec) uncompress(data []byte) ([]byte, error) {
	switch cd.Type {
	case "gzip":
		return dvid.GunzipBytes(data)
	case "zstd":
		return cd.zdec.DecodeAll(data, nil)
	}
	return data, nil
}

func (cd *codec) close() {
	if cd.zenc != nil {
		cd.zenc.Close()
	}
	if cd.zdec != nil {
		cd.zdec.Close()
	}
}

// blockKey returns the key of a block relative to the container, e.g., bodies/1/0/3.
func blockKey(key, dataset string, b dvid.ChunkPoint3d) string {
	return path.Join(key, dataset, fmt.Sprint(b[0]), fmt.Sprint(b[1]), fmt.Sprint(b[2]))
}

// blockExtent returns the voxel origin and clipped size of a block.
func blockExtent(b dvid.ChunkPoint3d, blockSize, volSize dvid.Point3d) (origin, size dvid.Point3d) {
	origin = b.MinPoint(blockSize)
	end := b.MaxPoint(blockSize)
	for i := 0; i < 3; i++ {
		if end[i] >= volSize[i] {
			end[i] = volSize[i] - 1
		}
		size[i] = end[i] - origin[i] + 1
	}
	return
}

type writer struct {
	store     storage.Store
	key       string
	dataset   string
	blockSize dvid.Point3d
	codec     *codec
}

func newWriter(store storage.Store, key string, cfg storage.Config) (*writer, error) {
	c := compression{Type: cfg.Compression, Level: cfg.Level}
	switch c.Type {
	case "", "gzip":
		c.Type = "gzip"
		if c.Level == 0 {
			c.Level = 1
		}
	case "none":
		c.Type = "raw"
	}
	if c.Type == "raw" {
		c.Level = 0
	}
	cd, err := newCodec(c)
	if err != nil {
		return nil, err
	}
	w := &writer{
		store:     store,
		key:       key,
		dataset:   cfg.Dataset,
		blockSize: cfg.ChunkSize,
		codec:     cd,
	}
	if w.dataset == "" {
		w.dataset = "bodies"
	}
	if w.blockSize == (dvid.Point3d{}) {
		w.blockSize = defaultBlockSize
	}
	for i := 0; i < 3; i++ {
		if w.blockSize[i] <= 0 {
			cd.close()
			return nil, fmt.Errorf("bad N5 block size %s", w.blockSize)
		}
	}
	return w, nil
}

func (w *writer) write(ctx context.Context, vol *labels.Volume) error {
	defer w.codec.close()
	timedLog := dvid.NewTimeLog()

	root, err := jsonBytes(rootAttributes{N5: Version})
	if err != nil {
		return err
	}
	if err := w.store.Put(ctx, path.Join(w.key, "attributes.json"), root); err != nil {
		return err
	}
	volSize := vol.Size()
	attrs := datasetAttributes{
		Dimensions:  [3]int64{int64(volSize[0]), int64(volSize[1]), int64(volSize[2])},
		BlockSize:   w.blockSize,
		DataType:    dvid.T_uint64.String(),
		Compression: w.codec.compression,
		Planes:      vol.Planes,
	}
	ds, err := jsonBytes(attrs)
	if err != nil {
		return err
	}
	if err := w.store.Put(ctx, path.Join(w.key, w.dataset, "attributes.json"), ds); err != nil {
		return err
	}
	if volSize.Prod() == 0 {
		return nil
	}

	var numBlocks, numSkipped, storedBytes int64
	n := volSize.NumChunks(w.blockSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for bz := int32(0); bz < n[2]; bz++ {
		for by := int32(0); by < n[1]; by++ {
			for bx := int32(0); bx < n[0]; bx++ {
				b := dvid.ChunkPoint3d{bx, by, bz}
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					data, err := w.encodeBlock(vol, b)
					if err != nil {
						return fmt.Errorf("block %s: %w", b, err)
					}
					atomic.AddInt64(&numBlocks, 1)
					if data == nil {
						atomic.AddInt64(&numSkipped, 1)
						return nil
					}
					atomic.AddInt64(&storedBytes, int64(len(data)))
					return w.store.Put(gctx, blockKey(w.key, w.dataset, b), data)
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	timedLog.Infof("Wrote N5 dataset %q: %d blocks (%d empty) totaling %s from %s of labels",
		w.dataset, numBlocks, numSkipped, humanize.Bytes(uint64(storedBytes)), humanize.Bytes(vol.NumBytes()))
	return nil
}

// encodeBlock returns the serialized block or nil if every voxel is zero.
func (w *writer) encodeBlock(vol *labels.Volume, b dvid.ChunkPoint3d) ([]byte, error) {
	origin, size := blockExtent(b, w.blockSize, vol.Size())
	payload := make([]byte, size.Prod()*8)
	var nonzero bool
	i := 0
	for z := origin[2]; z < origin[2]+size[2]; z++ {
		for y := origin[1]; y < origin[1]+size[1]; y++ {
			start := (int(z)*vol.Height+int(y))*vol.Width + int(origin[0])
			row := vol.Data[start : start+int(size[0])]
			if !nonzero {
				for _, v := range row {
					if v != 0 {
						nonzero = true
						break
					}
				}
			}
			dvid.PutUint64s(payload[i:], row)
			i += 8 * len(row)
		}
	}
	if !nonzero {
		return nil, nil
	}
	compressed, err := w.codec.compress(payload)
	if err != nil {
		return nil, err
	}
	data := make([]byte, headerSize, headerSize+len(compressed))
	binary.BigEndian.PutUint16(data[0:], modeDefault)
	binary.BigEndian.PutUint16(data[2:], numDims)
	for d := 0; d < numDims; d++ {
		binary.BigEndian.PutUint32(data[4+4*d:], uint32(size[d]))
	}
	return append(data, compressed...), nil
}

func readVolume(ctx context.Context, store storage.Store, key string) (*labels.Volume, error) {
	data, err := store.Get(ctx, path.Join(key, "attributes.json"))
	if err != nil {
		return nil, fmt.Errorf("not an N5 container: %w", err)
	}
	var root rootAttributes
	if err := decodeAttributes(data, compiledRootSchema, &root); err != nil {
		return nil, fmt.Errorf("bad N5 root attributes: %w", err)
	}
	if err := checkVersion(root.N5); err != nil {
		return nil, err
	}

	dataset := "bodies"
	data, err = store.Get(ctx, path.Join(key, dataset, "attributes.json"))
	if errors.Is(err, storage.ErrNotFound) {
		dataset, data, err = findDataset(ctx, store, key)
	}
	if err != nil {
		return nil, err
	}
	var attrs datasetAttributes
	if err := decodeAttributes(data, compiledDatasetSchema, &attrs); err != nil {
		return nil, fmt.Errorf("bad N5 dataset %q attributes: %w", dataset, err)
	}
	cd, err := newCodec(attrs.Compression)
	if err != nil {
		return nil, err
	}
	defer cd.close()

	volSize := dvid.Point3d{int32(attrs.Dimensions[0]), int32(attrs.Dimensions[1]), int32(attrs.Dimensions[2])}
	blockSize := dvid.Point3d(attrs.BlockSize)
	planes := attrs.Planes
	if len(planes) == 0 {
		for z := int32(0); z < volSize[2]; z++ {
			planes = append(planes, labels.PlaneIndex(z))
		}
	}
	if len(planes) != int(volSize[2]) {
		return nil, fmt.Errorf("N5 dataset %q lists %d planes for depth %d", dataset, len(planes), volSize[2])
	}
	vol := &labels.Volume{
		Width:  int(volSize[0]),
		Height: int(volSize[1]),
		Planes: planes,
		Data:   make([]uint64, volSize.Prod()),
	}
	if volSize.Prod() == 0 {
		return vol, nil
	}

	n := volSize.NumChunks(blockSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for bz := int32(0); bz < n[2]; bz++ {
		for by := int32(0); by < n[1]; by++ {
			for bx := int32(0); bx < n[0]; bx++ {
				b := dvid.ChunkPoint3d{bx, by, bz}
				g.Go(func() error {
					data, err := store.Get(gctx, blockKey(key, dataset, b))
					if errors.Is(err, storage.ErrNotFound) {
						return nil
					}
					if err != nil {
						return err
					}
					if err := decodeBlock(vol, data, cd, b, blockSize); err != nil {
						return fmt.Errorf("block %s: %w", b, err)
					}
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vol, nil
}

// findDataset returns the first dataset under the container root.
func findDataset(ctx context.Context, store storage.Store, key string) (string, []byte, error) {
	keys, err := store.List(ctx, key+"/")
	if err != nil {
		return "", nil, err
	}
	for _, k := range keys {
		dir, file := path.Split(k)
		dir = path.Clean(dir)
		if file != "attributes.json" || dir == path.Clean(key) {
			continue
		}
		data, err := store.Get(ctx, k)
		if err != nil {
			return "", nil, err
		}
		return path.Base(dir), data, nil
	}
	return "", nil, fmt.Errorf("no dataset in N5 container %q", key)
}

func decodeBlock(vol *labels.Volume, data []byte, cd *codec, b dvid.ChunkPoint3d, blockSize dvid.Point3d) error {
	if len(data) < headerSize {
		return fmt.Errorf("short block header (%d bytes)", len(data))
	}
	mode := binary.BigEndian.Uint16(data[0:])
	dims := binary.BigEndian.Uint16(data[2:])
	if mode != modeDefault || dims != numDims {
		return fmt.Errorf("unsupported block mode %d with %d dimensions", mode, dims)
	}
	origin, expected := blockExtent(b, blockSize, vol.Size())
	var size dvid.Point3d
	for d := 0; d < numDims; d++ {
		size[d] = int32(binary.BigEndian.Uint32(data[4+4*d:]))
		if size[d] != expected[d] {
			return fmt.Errorf("block size %s, expected %s", size, expected)
		}
	}
	payload, err := cd.uncompress(data[headerSize:])
	if err != nil {
		return err
	}
	values, err := dvid.Uint64s(payload)
	if err != nil {
		return err
	}
	if int64(len(values)) != size.Prod() {
		return fmt.Errorf("block has %d labels, expected %d", len(values), size.Prod())
	}
	i := 0
	for z := origin[2]; z < origin[2]+size[2]; z++ {
		for y := origin[1]; y < origin[1]+size[1]; y++ {
			start := (int(z)*vol.Height+int(y))*vol.Width + int(origin[0])
			i += copy(vol.Data[start:start+int(size[0])], values[i:i+int(size[0])])
		}
	}
	return nil
}
