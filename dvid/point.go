package dvid

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Point2d is a 2d point, e.g., a pixel coordinate or the (width, height) size of a plane.
type Point2d [2]int32

// RectSize returns the size of a rectangle as a Point2d.
func RectSize(rect image.Rectangle) (size Point2d) {
	size[0] = int32(rect.Dx())
	size[1] = int32(rect.Dy())
	return
}

func (p Point2d) Prod() int64 {
	return int64(p[0]) * int64(p[1])
}

func (p Point2d) String() string {
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

// Point3d is an ordered list of three 32-bit signed integers.
type Point3d [3]int32

func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Min returns the component-wise minimum of two points.
func (p Point3d) Min(p2 Point3d) (min Point3d) {
	for i := 0; i < 3; i++ {
		min[i] = p[i]
		if p2[i] < min[i] {
			min[i] = p2[i]
		}
	}
	return
}

// Chunk returns the chunk space coordinate of the chunk containing the point.
// Only non-negative points are expected.
func (p Point3d) Chunk(size Point3d) ChunkPoint3d {
	return ChunkPoint3d{p[0] / size[0], p[1] / size[1], p[2] / size[2]}
}

// NumChunks returns the number of chunks of the given size needed to cover
// a volume of extent p along each axis.
func (p Point3d) NumChunks(size Point3d) (n ChunkPoint3d) {
	for i := 0; i < 3; i++ {
		n[i] = (p[i] + size[i] - 1) / size[i]
	}
	return
}

// ParsePoint3d parses a string of format "%d,%d,%d" or "%dx%dx%d".
func ParsePoint3d(s string) (Point3d, error) {
	var p Point3d
	sep := ","
	if !strings.Contains(s, ",") {
		sep = "x"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return p, fmt.Errorf("expected 3 values in %q", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return p, fmt.Errorf("bad coordinate %q in %q: %v", part, s, err)
		}
		p[i] = int32(v)
	}
	return p, nil
}

// ChunkPoint3d handles 3d signed chunk coordinates.
type ChunkPoint3d [3]int32

func (c ChunkPoint3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// MinPoint returns the smallest voxel coordinate of the given 3d chunk.
func (c ChunkPoint3d) MinPoint(size Point3d) Point3d {
	return Point3d{c[0] * size[0], c[1] * size[1], c[2] * size[2]}
}

// MaxPoint returns the maximum voxel coordinate of the given 3d chunk.
func (c ChunkPoint3d) MaxPoint(size Point3d) Point3d {
	return Point3d{
		(c[0]+1)*size[0] - 1,
		(c[1]+1)*size[1] - 1,
		(c[2]+1)*size[2] - 1,
	}
}
