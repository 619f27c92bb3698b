package raveler

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/janelia-flyem/sp2body/labels"
)

// MaxSuperpixel24 is the largest superpixel id a 24-bit RGBA image can encode.
const MaxSuperpixel24 = 1<<24 - 1

// Decoder produces superpixel label images from image files.
type Decoder interface {
	// Size returns the width and height of an image without decoding its pixels.
	Size(path string) (width, height int, err error)

	// Decode returns the superpixel ids of every pixel in the image.
	Decode(path string) (*labels.Image[uint32], error)
}

// PNGDecoder decodes Raveler superpixel PNG files.
type PNGDecoder struct{}

func (PNGDecoder) Size(path string) (int, int, error) {
	return SuperpixelFileSize(path)
}

func (PNGDecoder) Decode(path string) (*labels.Image[uint32], error) {
	return ReadSuperpixelFile(path)
}

// DecodeSuperpixels decodes a superpixel PNG.  Raveler packs 24-bit superpixel ids
// into the RGB channels, red being the least significant byte, and sets alpha to 255.
// 16-bit grayscale images hold 16-bit superpixel ids directly.
func DecodeSuperpixels(r io.Reader) (*labels.Image[uint32], error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := labels.NewImage[uint32](width, height)

	switch src := img.(type) {
	case *image.NRGBA:
		decodeRGB(out, src.Pix, src.Stride, width, height)
	case *image.RGBA:
		// png returns RGBA only for opaque truecolor images, so no premultiplication.
		decodeRGB(out, src.Pix, src.Stride, width, height)
	case *image.Gray16:
		i := 0
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < width; x++ {
				out.Data[i] = uint32(row[2*x])<<8 | uint32(row[2*x+1])
				i++
			}
		}
	case *image.Gray:
		i := 0
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < width; x++ {
				out.Data[i] = uint32(row[x])
				i++
			}
		}
	default:
		return nil, fmt.Errorf("expected 32-bit RGBA or 16-bit grayscale superpixels, got %T", img)
	}
	return out, nil
}

func decodeRGB(out *labels.Image[uint32], pix []uint8, stride, width, height int) {
	i := 0
	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x := 0; x < width; x++ {
			p := row[4*x:]
			out.Data[i] = uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
			i++
		}
	}
}

// ReadSuperpixelFile decodes a superpixel PNG file.
func ReadSuperpixelFile(path string) (*labels.Image[uint32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := DecodeSuperpixels(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("superpixel image %q: %w", path, err)
	}
	return img, nil
}

// SuperpixelFileSize returns the dimensions of a superpixel PNG from its header.
func SuperpixelFileSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return 0, 0, fmt.Errorf("superpixel image %q: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// EncodeSuperpixels writes superpixel ids as a Raveler 24-bit RGBA PNG.
func EncodeSuperpixels(w io.Writer, sp *labels.Image[uint32]) error {
	img := image.NewNRGBA(image.Rect(0, 0, sp.Width, sp.Height))
	i := 0
	for y := 0; y < sp.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < sp.Width; x++ {
			id := sp.Data[i]
			if id > MaxSuperpixel24 {
				return fmt.Errorf("superpixel %d at (%d,%d) does not fit in 24 bits", id, x, y)
			}
			p := row[4*x:]
			p[0] = uint8(id)
			p[1] = uint8(id >> 8)
			p[2] = uint8(id >> 16)
			p[3] = 255
			i++
		}
	}
	return png.Encode(w, img)
}
