package labels

import (
	"fmt"
)

// Relabel returns a new image where every label has been replaced by its mapped
// value.  The output has the same label type as the input.
func Relabel[T Unsigned](m *SortedMapping, img *Image[T]) (*Image[T], error) {
	return RelabelAs[T, T](m, img)
}

// RelabelAs is like Relabel but returns labels of type Out, which may be wider than
// the input type.  The first pixel, in raster order, whose label is not a key of
// the mapping causes an *UnmappedLabelError.  A mapped value too large for Out
// causes a *LabelOverflowError.  The input image is not modified.
func RelabelAs[Out, In Unsigned](m *SortedMapping, img *Image[In]) (*Image[Out], error) {
	if img == nil {
		return nil, fmt.Errorf("cannot relabel nil image")
	}
	out := NewImage[Out](img.Width, img.Height)
	if len(img.Data) == 0 {
		return out, nil
	}
	maxOut := maxOf[Out]()

	// Reuse the last lookup across runs of the same label.
	var (
		cur   In
		value Out
		valid bool
	)
	for i, label := range img.Data {
		if !valid || label != cur {
			idx := m.search(uint64(label))
			if idx < 0 {
				return nil, &UnmappedLabelError{Label: uint64(label), Pos: img.pos(i)}
			}
			mapped := m.values[idx]
			if mapped > maxOut {
				return nil, &LabelOverflowError{Label: uint64(label), Value: mapped, DataType: dataTypeOf[Out]()}
			}
			cur, value, valid = label, Out(mapped), true
		}
		out.Data[i] = value
	}
	return out, nil
}

// RelabelToBodies applies the superpixel to segment mapping and then the segment
// to body mapping to a superpixel image, returning 64-bit body labels.
func RelabelToBodies[T Unsigned](spToSeg, segToBody *SortedMapping, img *Image[T]) (*Image[uint64], error) {
	segments, err := RelabelAs[uint64](spToSeg, img)
	if err != nil {
		return nil, fmt.Errorf("superpixel->segment: %w", err)
	}
	bodies, err := Relabel(segToBody, segments)
	if err != nil {
		return nil, fmt.Errorf("segment->body: %w", err)
	}
	return bodies, nil
}
