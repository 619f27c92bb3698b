/*
	Package labels holds the label remapping core: sorted label mappings, 2d label images,
	relabeling of images through one or two mappings, and assembly of relabeled planes
	into a 3d body volume.  Label namespaces (superpixel, segment, body) are not
	distinguished by type; a label's meaning comes from the mapping stage that produced it.
*/
package labels

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/sp2body/dvid"
)

// Unsigned is the set of label types an Image can hold.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// PlaneIndex is the position of a 2d plane along the stacking axis.
type PlaneIndex int32

func (z PlaneIndex) String() string {
	return fmt.Sprintf("plane %d", int32(z))
}

// maxOf returns the largest label representable by T.
func maxOf[T Unsigned]() uint64 {
	return uint64(^T(0))
}

// dataTypeOf returns the element data type for T.
func dataTypeOf[T Unsigned]() dvid.DataType {
	switch maxOf[T]() {
	case math.MaxUint8:
		return dvid.T_uint8
	case math.MaxUint16:
		return dvid.T_uint16
	case math.MaxUint32:
		return dvid.T_uint32
	}
	return dvid.T_uint64
}
