package labels

import (
	"errors"
	"sync"
	"testing"

	"github.com/janelia-flyem/sp2body/dvid"
)

func constImage(width, height int, label uint64) *Image[uint64] {
	img := NewImage[uint64](width, height)
	for i := range img.Data {
		img.Data[i] = label
	}
	return img
}

func TestAssemblePlaneOrder(t *testing.T) {
	vol, err := AssembleVolume([]PlaneImage{
		{Plane: 2, Image: constImage(3, 2, 102)},
		{Plane: 0, Image: constImage(3, 2, 100)},
		{Plane: 1, Image: constImage(3, 2, 101)},
	})
	if err != nil {
		t.Fatalf("couldn't assemble: %v\n", err)
	}
	if vol.Size() != (dvid.Point3d{3, 2, 3}) {
		t.Fatalf("bad volume size: %s\n", vol.Size())
	}
	for k := 0; k < 3; k++ {
		if vol.Planes[k] != PlaneIndex(k) {
			t.Errorf("plane %d holds index %d\n", k, vol.Planes[k])
		}
		if !vol.Plane(k).Equals(constImage(3, 2, uint64(100+k))) {
			t.Errorf("plane %d has wrong labels: %v\n", k, vol.Plane(k).Data)
		}
	}
	if vol.At(2, 1, 2) != 102 {
		t.Errorf("bad voxel: %d\n", vol.At(2, 1, 2))
	}
	if vol.NumBytes() != 3*2*3*8 {
		t.Errorf("bad byte count: %d\n", vol.NumBytes())
	}
}

func TestAssembleSparseIndices(t *testing.T) {
	vol, err := AssembleVolume([]PlaneImage{
		{Plane: 1500, Image: constImage(1, 1, 2)},
		{Plane: 1499, Image: constImage(1, 1, 1)},
	})
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if vol.Data[0] != 1 || vol.Data[1] != 2 {
		t.Errorf("bad plane order for sparse indices: %v\n", vol.Data)
	}
}

func TestAssembleErrors(t *testing.T) {
	_, err := AssembleVolume([]PlaneImage{
		{Plane: 0, Image: constImage(3, 2, 1)},
		{Plane: 1, Image: constImage(2, 3, 1)},
	})
	var shapeErr *ShapeMismatchError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected shape mismatch, got %v\n", err)
	}
	if shapeErr.Plane != 1 || shapeErr.Expected != (dvid.Point2d{3, 2}) || shapeErr.Got != (dvid.Point2d{2, 3}) {
		t.Errorf("bad shape mismatch error: %+v\n", shapeErr)
	}

	_, err = AssembleVolume([]PlaneImage{
		{Plane: 4, Image: constImage(1, 1, 1)},
		{Plane: 4, Image: constImage(1, 1, 1)},
	})
	var dupErr *DuplicatePlaneError
	if !errors.As(err, &dupErr) || dupErr.Plane != 4 {
		t.Errorf("expected duplicate plane error, got %v\n", err)
	}

	if _, err := AssembleVolume(nil); err == nil {
		t.Errorf("expected error assembling no planes\n")
	}

	a, err := NewAssembler([]PlaneIndex{0, 1}, 1, 1)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	var missing *MissingPlaneIndexError
	if err := a.Put(7, constImage(1, 1, 1)); !errors.As(err, &missing) {
		t.Errorf("expected missing plane error, got %v\n", err)
	}
	if err := a.Put(0, constImage(1, 1, 1)); err != nil {
		t.Fatalf("%v\n", err)
	}
	if err := a.Put(0, constImage(1, 1, 1)); !errors.As(err, &dupErr) {
		t.Errorf("expected duplicate put error, got %v\n", err)
	}
	if _, err := a.Volume(); err == nil {
		t.Errorf("expected error on incomplete volume\n")
	}
}

func TestAssemblerBadImages(t *testing.T) {
	a, err := NewAssembler([]PlaneIndex{3, 4}, 2, 2)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if err := a.Put(3, nil); err == nil {
		t.Errorf("expected error for nil image\n")
	}
	short := &Image[uint64]{Width: 2, Height: 2, Data: []uint64{1, 2, 3}}
	if err := a.Put(3, short); err == nil {
		t.Errorf("expected error for image with too few labels\n")
	}
	long := &Image[uint64]{Width: 2, Height: 2, Data: []uint64{1, 2, 3, 4, 5}}
	if err := a.Put(4, long); err == nil {
		t.Errorf("expected error for image with too many labels\n")
	}

	// rejected puts don't fill the slot
	if err := a.Put(3, constImage(2, 2, 8)); err != nil {
		t.Fatalf("%v\n", err)
	}
	if err := a.Put(4, constImage(2, 2, 9)); err != nil {
		t.Fatalf("%v\n", err)
	}
	vol, err := a.Volume()
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if vol.At(1, 1, 0) != 8 || vol.At(0, 0, 1) != 9 {
		t.Errorf("bad volume after rejected puts: %v\n", vol.Data)
	}

	if _, err := AssembleVolume([]PlaneImage{{Plane: 0}}); err == nil {
		t.Errorf("expected error assembling nil image\n")
	}
}

func TestAssemblerConcurrentPut(t *testing.T) {
	const numPlanes = 64
	indices := make([]PlaneIndex, numPlanes)
	for i := range indices {
		indices[i] = PlaneIndex(numPlanes - i)
	}
	a, err := NewAssembler(indices, 16, 8)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, numPlanes)
	for _, z := range indices {
		wg.Add(1)
		go func(z PlaneIndex) {
			defer wg.Done()
			errs <- a.Put(z, constImage(16, 8, uint64(z)*10))
		}(z)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("%v\n", err)
		}
	}
	vol, err := a.Volume()
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	for k := 0; k < numPlanes; k++ {
		want := uint64(k+1) * 10
		if vol.At(15, 7, k) != want || vol.At(0, 0, k) != want {
			t.Errorf("plane %d holds %d, expected %d\n", k, vol.At(0, 0, k), want)
		}
	}
}
