package labels

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/janelia-flyem/sp2body/dvid"
)

func mustMapping(t *testing.T, pairs ...Pair) *SortedMapping {
	t.Helper()
	m, err := NewSortedMapping(pairs)
	if err != nil {
		t.Fatalf("bad mapping %v: %v\n", pairs, err)
	}
	return m
}

func TestRelabelToBodiesScenario(t *testing.T) {
	spToSeg := mustMapping(t, Pair{1, 10}, Pair{2, 20})
	segToBody := mustMapping(t, Pair{10, 100}, Pair{20, 200})
	img, err := MakeImage([]uint32{1, 2, 2, 1}, 2, 2)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	bodies, err := RelabelToBodies(spToSeg, segToBody, img)
	if err != nil {
		t.Fatalf("couldn't relabel: %v\n", err)
	}
	expected := &Image[uint64]{Width: 2, Height: 2, Data: []uint64{100, 200, 200, 100}}
	if !bodies.Equals(expected) {
		t.Errorf("expected %v, got %v\n", expected.Data, bodies.Data)
	}
	if bodies.DataType() != dvid.T_uint64 {
		t.Errorf("expected uint64 body image, got %s\n", bodies.DataType())
	}
}

func randomImage(rnd *rand.Rand, width, height int, labels []uint64) *Image[uint32] {
	img := NewImage[uint32](width, height)
	for i := range img.Data {
		// runs of labels like real superpixel images
		if i > 0 && rnd.Intn(4) != 0 {
			img.Data[i] = img.Data[i-1]
			continue
		}
		img.Data[i] = uint32(labels[rnd.Intn(len(labels))])
	}
	return img
}

func TestRelabelIdentity(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	present := []uint64{0, 1, 2, 77, 1 << 20, 1<<24 - 1}
	img := randomImage(rnd, 37, 19, present)
	m, err := IdentityMapping(present)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	out, err := Relabel(m, img)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if !out.Equals(img) {
		t.Errorf("identity relabel changed image\n")
	}
	wide, err := RelabelAs[uint64](m, img)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	for i, v := range img.Data {
		if wide.Data[i] != uint64(v) {
			t.Fatalf("identity relabel to uint64 changed pixel %d: %d -> %d\n", i, v, wide.Data[i])
		}
	}
}

func TestRelabelComposability(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		numSp := 1 + rnd.Intn(50)
		var sps []uint64
		var pairs1, pairs2 []Pair
		segSeen := make(map[uint64]bool)
		for i := 0; i < numSp; i++ {
			sp := uint64(i*7 + rnd.Intn(7))
			seg := uint64(rnd.Intn(20)) + 1000
			sps = append(sps, sp)
			pairs1 = append(pairs1, Pair{sp, seg})
			if !segSeen[seg] {
				segSeen[seg] = true
				pairs2 = append(pairs2, Pair{seg, uint64(rnd.Int63())})
			}
		}
		m1 := mustMapping(t, pairs1...)
		m2 := mustMapping(t, pairs2...)
		img := randomImage(rnd, 1+rnd.Intn(40), 1+rnd.Intn(40), sps)

		twoStage, err := RelabelToBodies(m1, m2, img)
		if err != nil {
			t.Fatalf("trial %d: %v\n", trial, err)
		}
		oneStage, err := RelabelAs[uint64](Compose(m1, m2), img)
		if err != nil {
			t.Fatalf("trial %d: %v\n", trial, err)
		}
		if !twoStage.Equals(oneStage) {
			t.Fatalf("trial %d: composite relabel differs from two-stage relabel\n", trial)
		}
		if twoStage.Width != img.Width || twoStage.Height != img.Height {
			t.Fatalf("trial %d: shape changed from %s to %s\n", trial, img.Size(), twoStage.Size())
		}
	}
}

func TestRelabelUnmapped(t *testing.T) {
	m := mustMapping(t, Pair{1, 10}, Pair{3, 30})
	img, _ := MakeImage([]uint16{1, 1, 3, 1, 2, 3}, 3, 2)
	out, err := Relabel(m, img)
	if err == nil {
		t.Fatalf("expected unmapped label error, got %v\n", out.Data)
	}
	var unmapped *UnmappedLabelError
	if !errors.As(err, &unmapped) {
		t.Fatalf("expected UnmappedLabelError, got %v\n", err)
	}
	if unmapped.Label != 2 || unmapped.Pos != (dvid.Point2d{1, 1}) {
		t.Errorf("bad unmapped error: label %d at %s\n", unmapped.Label, unmapped.Pos)
	}

	// label below every key must not fall back to anything
	img2, _ := MakeImage([]uint16{0}, 1, 1)
	if _, err := Relabel(m, img2); !errors.As(err, &unmapped) {
		t.Errorf("expected unmapped error for label below all keys, got %v\n", err)
	}
	// nor above every key
	img3, _ := MakeImage([]uint16{9}, 1, 1)
	if _, err := Relabel(m, img3); !errors.As(err, &unmapped) {
		t.Errorf("expected unmapped error for label above all keys, got %v\n", err)
	}
	if img.Data[4] != 2 {
		t.Errorf("input image was modified\n")
	}
}

func TestRelabelToBodiesStageErrors(t *testing.T) {
	spToSeg := mustMapping(t, Pair{1, 10}, Pair{2, 20})
	segToBody := mustMapping(t, Pair{10, 100})
	img, _ := MakeImage([]uint32{1, 2}, 2, 1)
	_, err := RelabelToBodies(spToSeg, segToBody, img)
	var unmapped *UnmappedLabelError
	if !errors.As(err, &unmapped) {
		t.Fatalf("expected unmapped segment error, got %v\n", err)
	}
	if unmapped.Label != 20 || unmapped.Pos != (dvid.Point2d{1, 0}) {
		t.Errorf("bad unmapped segment error: %v\n", unmapped)
	}
	if _, err := Relabel(Compose(spToSeg, segToBody), img); !errors.As(err, &unmapped) {
		t.Errorf("composite should reject the same pixel, got %v\n", err)
	}
}

func TestRelabelOverflow(t *testing.T) {
	m := mustMapping(t, Pair{1, 300})
	img, _ := MakeImage([]uint8{1, 1}, 2, 1)
	_, err := Relabel(m, img)
	var overflow *LabelOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected overflow error, got %v\n", err)
	}
	if overflow.DataType != dvid.T_uint8 || overflow.Value != 300 {
		t.Errorf("bad overflow error: %v\n", overflow)
	}
	wide, err := RelabelAs[uint16](m, img)
	if err != nil {
		t.Fatalf("upcast relabel failed: %v\n", err)
	}
	if wide.Data[0] != 300 || wide.DataType() != dvid.T_uint16 {
		t.Errorf("bad upcast relabel: %v\n", wide.Data)
	}
}

func TestRelabelEmpty(t *testing.T) {
	img := NewImage[uint32](0, 5)
	out, err := Relabel(mustMapping(t), img)
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	if out.Width != 0 || out.Height != 5 {
		t.Errorf("bad empty image shape: %s\n", out.Size())
	}
	if _, err := MakeImage([]uint32{1, 2, 3}, 2, 2); err == nil {
		t.Errorf("expected error for mismatched image data\n")
	}
}

func BenchmarkRelabel(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	var pairs []Pair
	var sps []uint64
	for i := 0; i < 20000; i++ {
		pairs = append(pairs, Pair{uint64(i), uint64(rnd.Int63())})
		sps = append(sps, uint64(i))
	}
	m, _ := NewSortedMapping(pairs)
	img := randomImage(rnd, 2048, 2048, sps)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RelabelAs[uint64](m, img); err != nil {
			b.Fatal(err)
		}
	}
}
