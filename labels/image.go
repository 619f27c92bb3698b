package labels

import (
	"fmt"

	"github.com/janelia-flyem/sp2body/dvid"
)

// Image is a 2d plane of labels stored in row-major order.
type Image[T Unsigned] struct {
	Width  int
	Height int
	Data   []T
}

// NewImage returns a zeroed image of the given size.
func NewImage[T Unsigned](width, height int) *Image[T] {
	return &Image[T]{
		Width:  width,
		Height: height,
		Data:   make([]T, width*height),
	}
}

// MakeImage wraps existing row-major data as an image without copying.
func MakeImage[T Unsigned](data []T, width, height int) (*Image[T], error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("bad image size %d x %d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("image of %d x %d needs %d labels, got %d", width, height, width*height, len(data))
	}
	return &Image[T]{Width: width, Height: height, Data: data}, nil
}

func (img *Image[T]) At(x, y int) T {
	return img.Data[y*img.Width+x]
}

func (img *Image[T]) Set(x, y int, v T) {
	img.Data[y*img.Width+x] = v
}

// Size returns the (width, height) of the image.
func (img *Image[T]) Size() dvid.Point2d {
	return dvid.Point2d{int32(img.Width), int32(img.Height)}
}

// DataType returns the element type of the image labels.
func (img *Image[T]) DataType() dvid.DataType {
	return dataTypeOf[T]()
}

// Equals returns true if both images have the same size and labels.
func (img *Image[T]) Equals(other *Image[T]) bool {
	if img == nil || other == nil {
		return img == other
	}
	if img.Width != other.Width || img.Height != other.Height || len(img.Data) != len(other.Data) {
		return false
	}
	for i, v := range img.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// pos converts a raster offset into a pixel coordinate.
func (img *Image[T]) pos(i int) dvid.Point2d {
	if img.Width == 0 {
		return dvid.Point2d{}
	}
	return dvid.Point2d{int32(i % img.Width), int32(i / img.Width)}
}
