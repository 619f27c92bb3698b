package labels

import (
	"sort"
)

// Bounds is the bounding box and pixel count of one label within a plane.
type Bounds struct {
	Label  uint64
	X, Y   int
	Width  int
	Height int
	Volume uint64
}

type extent struct {
	minX, minY, maxX, maxY int
	count                  uint64
}

// ComputeBounds returns the bounds of every distinct label in the image, sorted by label.
func ComputeBounds[T Unsigned](img *Image[T]) []Bounds {
	extents := make(map[T]*extent)
	i := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			label := img.Data[i]
			i++
			e, found := extents[label]
			if !found {
				extents[label] = &extent{minX: x, minY: y, maxX: x, maxY: y, count: 1}
				continue
			}
			if x < e.minX {
				e.minX = x
			}
			if x > e.maxX {
				e.maxX = x
			}
			e.maxY = y
			e.count++
		}
	}
	bounds := make([]Bounds, 0, len(extents))
	for label, e := range extents {
		bounds = append(bounds, Bounds{
			Label:  uint64(label),
			X:      e.minX,
			Y:      e.minY,
			Width:  e.maxX - e.minX + 1,
			Height: e.maxY - e.minY + 1,
			Volume: e.count,
		})
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Label < bounds[j].Label })
	return bounds
}
