package labels

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// LabelSet is a compressed set of 64-bit labels.  It is not safe for concurrent writers.
type LabelSet struct {
	rb *roaring64.Bitmap
}

// NewLabelSet returns a set holding the given labels.
func NewLabelSet(labels ...uint64) *LabelSet {
	s := &LabelSet{rb: roaring64.New()}
	s.rb.AddMany(labels)
	return s
}

func (s *LabelSet) Add(label uint64) {
	s.rb.Add(label)
}

// AddImage adds every label present in the image.
func AddImage[T Unsigned](s *LabelSet, img *Image[T]) {
	var (
		cur   T
		valid bool
	)
	for _, label := range img.Data {
		if valid && label == cur {
			continue
		}
		s.rb.Add(uint64(label))
		cur, valid = label, true
	}
}

func (s *LabelSet) Contains(label uint64) bool {
	return s.rb.Contains(label)
}

// Len returns the number of distinct labels in the set.
func (s *LabelSet) Len() uint64 {
	return s.rb.GetCardinality()
}

// Union adds all labels of other to the set.
func (s *LabelSet) Union(other *LabelSet) {
	s.rb.Or(other.rb)
}

// Difference returns the labels in s that are not in other.
func (s *LabelSet) Difference(other *LabelSet) *LabelSet {
	diff := s.rb.Clone()
	diff.AndNot(other.rb)
	return &LabelSet{rb: diff}
}

// Slice returns the labels in ascending order.
func (s *LabelSet) Slice() []uint64 {
	return s.rb.ToArray()
}
