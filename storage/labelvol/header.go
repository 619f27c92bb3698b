//go:generate msgp -tests=false

package labelvol

// header describes the planes that follow it in a labelvol object.
type header struct {
	Version     uint8
	Width       int32
	Height      int32
	Planes      []int32
	Compression string
	Checksum    bool
}
