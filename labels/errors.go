package labels

import (
	"fmt"

	"github.com/janelia-flyem/sp2body/dvid"
)

// DuplicateKeyError is returned when a mapping defines the same source label twice.
type DuplicateKeyError struct {
	Key    uint64
	First  uint64 // value paired with the first occurrence
	Second uint64 // value paired with the repeated occurrence
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("label %d mapped more than once (to %d and %d)", e.Key, e.First, e.Second)
}

// UnmappedLabelError is returned when an image holds a label that is not a key of
// the mapping applied to it.  Pos is the first pixel, in raster order, holding the label.
type UnmappedLabelError struct {
	Label uint64
	Pos   dvid.Point2d
}

func (e *UnmappedLabelError) Error() string {
	return fmt.Sprintf("label %d at pixel %s has no mapping", e.Label, e.Pos)
}

// LabelOverflowError is returned when a mapped label does not fit the requested output type.
type LabelOverflowError struct {
	Label    uint64
	Value    uint64
	DataType dvid.DataType
}

func (e *LabelOverflowError) Error() string {
	return fmt.Sprintf("label %d maps to %d which overflows %s", e.Label, e.Value, e.DataType)
}

// ShapeMismatchError is returned when a plane's dimensions differ from the volume's.
type ShapeMismatchError struct {
	Plane    PlaneIndex
	Expected dvid.Point2d
	Got      dvid.Point2d
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s has size %s, expected %s", e.Plane, e.Got, e.Expected)
}

// MissingPlaneIndexError is returned when no mapping or volume slot exists for a plane.
type MissingPlaneIndexError struct {
	Plane PlaneIndex
}

func (e *MissingPlaneIndexError) Error() string {
	return fmt.Sprintf("no superpixel to segment mapping for %s", e.Plane)
}

// DuplicatePlaneError is returned when the same plane index is supplied more than once.
type DuplicatePlaneError struct {
	Plane PlaneIndex
}

func (e *DuplicatePlaneError) Error() string {
	return fmt.Sprintf("%s supplied more than once", e.Plane)
}
