package labels

import (
	"fmt"
	"sort"
	"sync"

	"github.com/janelia-flyem/sp2body/dvid"
)

// Volume is a stack of body-labeled planes.  Data is plane-major so the voxel
// (x, y) of the k-th plane is at Data[k*Width*Height + y*Width + x].  Planes holds
// the originating plane index of each plane in ascending order.
type Volume struct {
	Width  int
	Height int
	Planes []PlaneIndex
	Data   []uint64
}

// Depth returns the number of planes in the volume.
func (v *Volume) Depth() int {
	return len(v.Planes)
}

// Size returns the volume extent as (width, height, depth).
func (v *Volume) Size() dvid.Point3d {
	return dvid.Point3d{int32(v.Width), int32(v.Height), int32(v.Depth())}
}

// NumBytes returns the size of the label data in bytes.
func (v *Volume) NumBytes() uint64 {
	return uint64(len(v.Data)) * 8
}

// Plane returns the k-th plane as an image that shares the volume's memory.
func (v *Volume) Plane(k int) *Image[uint64] {
	n := v.Width * v.Height
	return &Image[uint64]{Width: v.Width, Height: v.Height, Data: v.Data[k*n : (k+1)*n]}
}

func (v *Volume) At(x, y, k int) uint64 {
	return v.Data[(k*v.Height+y)*v.Width+x]
}

// Assembler collects relabeled planes into a preallocated volume.  Put may be
// called concurrently for distinct planes since each writes a disjoint slice.
type Assembler struct {
	vol    *Volume
	slot   map[PlaneIndex]int
	mu     sync.Mutex
	filled []bool
}

// NewAssembler returns an assembler for the given plane indices, which may be in
// any order.  The k-th plane of the volume will hold the k-th smallest index.
func NewAssembler(indices []PlaneIndex, width, height int) (*Assembler, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("bad plane size %d x %d", width, height)
	}
	planes := make([]PlaneIndex, len(indices))
	copy(planes, indices)
	sort.Slice(planes, func(i, j int) bool { return planes[i] < planes[j] })
	slot := make(map[PlaneIndex]int, len(planes))
	for k, z := range planes {
		if k > 0 && planes[k-1] == z {
			return nil, &DuplicatePlaneError{Plane: z}
		}
		slot[z] = k
	}
	return &Assembler{
		vol: &Volume{
			Width:  width,
			Height: height,
			Planes: planes,
			Data:   make([]uint64, width*height*len(planes)),
		},
		slot:   slot,
		filled: make([]bool, len(planes)),
	}, nil
}

// Put copies a body-labeled plane into the volume slot for its plane index.
func (a *Assembler) Put(z PlaneIndex, img *Image[uint64]) error {
	k, found := a.slot[z]
	if !found {
		return &MissingPlaneIndexError{Plane: z}
	}
	if img == nil {
		return fmt.Errorf("nil image for %s", z)
	}
	if len(img.Data) != img.Width*img.Height {
		return fmt.Errorf("%s image of %d x %d holds %d labels", z, img.Width, img.Height, len(img.Data))
	}
	if img.Width != a.vol.Width || img.Height != a.vol.Height {
		return &ShapeMismatchError{
			Plane:    z,
			Expected: dvid.Point2d{int32(a.vol.Width), int32(a.vol.Height)},
			Got:      img.Size(),
		}
	}
	a.mu.Lock()
	if a.filled[k] {
		a.mu.Unlock()
		return &DuplicatePlaneError{Plane: z}
	}
	a.filled[k] = true
	a.mu.Unlock()

	copy(a.vol.Plane(k).Data, img.Data)
	return nil
}

// Volume returns the assembled volume once every plane has been put.
func (a *Assembler) Volume() (*Volume, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, ok := range a.filled {
		if !ok {
			return nil, fmt.Errorf("%s was never assembled", a.vol.Planes[k])
		}
	}
	return a.vol, nil
}

// PlaneImage associates a body-labeled image with its plane index.
type PlaneImage struct {
	Plane PlaneIndex
	Image *Image[uint64]
}

// AssembleVolume stacks the planes in ascending plane index order regardless of
// their order in the argument.  All planes must share the first plane's size.
func AssembleVolume(planes []PlaneImage) (*Volume, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no planes to assemble")
	}
	indices := make([]PlaneIndex, len(planes))
	for i, p := range planes {
		indices[i] = p.Plane
	}
	first := planes[0].Image
	if first == nil {
		return nil, fmt.Errorf("nil image for %s", planes[0].Plane)
	}
	a, err := NewAssembler(indices, first.Width, first.Height)
	if err != nil {
		return nil, err
	}
	for _, p := range planes {
		if err := a.Put(p.Plane, p.Image); err != nil {
			return nil, err
		}
	}
	return a.Volume()
}
