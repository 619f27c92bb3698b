package raveler

import (
	"fmt"
	"io"

	"github.com/janelia-flyem/sp2body/labels"
)

// WriteBoundsHeader writes the comment header of a superpixel bounds file.
func WriteBoundsHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# superpixel bounding boxes and volumes\n# plane\tsp\tx y width height volume\n\n")
	return err
}

// WriteBounds writes one line per superpixel of a plane.
func WriteBounds(w io.Writer, z labels.PlaneIndex, bounds []labels.Bounds) error {
	for _, b := range bounds {
		_, err := fmt.Fprintf(w, "%d\t%d\t%d %d %d %d %d\n", int32(z), b.Label, b.X, b.Y, b.Width, b.Height, b.Volume)
		if err != nil {
			return err
		}
	}
	return nil
}
