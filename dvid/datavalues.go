/*
   This file handles the layout of a single voxel label value and routines that
   move such values in and out of byte slices.
*/

package dvid

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DataType is a unique ID for each type of voxel value, e.g., a uint8 or a uint64.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_uint16
	T_uint32
	T_uint64
)

var typeBytes = map[DataType]int32{
	T_uint8:  1,
	T_uint16: 2,
	T_uint32: 4,
	T_uint64: 8,
}

var typeNames = map[DataType]string{
	T_uint8:  "uint8",
	T_uint16: "uint16",
	T_uint32: "uint32",
	T_uint64: "uint64",
}

// DataTypeBytes returns the # of bytes for a given type.
// For example, T_uint16 is 2 bytes.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

func (t DataType) String() string {
	name, found := typeNames[t]
	if !found {
		return fmt.Sprintf("unknown data type %d", uint8(t))
	}
	return name
}

// ParseDataType returns the DataType for names like "uint64".
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return T_uint8, fmt.Errorf("unsupported data type %q", s)
}

// PutUint64s writes the values in big-endian order into dst, which must
// have at least 8 * len(values) bytes.
func PutUint64s(dst []byte, values []uint64) {
	for i, v := range values {
		binary.BigEndian.PutUint64(dst[i*8:], v)
	}
}

// Uint64s reads big-endian uint64 values out of src.
func Uint64s(src []byte) ([]uint64, error) {
	if len(src)%8 != 0 {
		return nil, fmt.Errorf("expected multiple of 8 bytes for uint64 values, got %d bytes", len(src))
	}
	values := make([]uint64, len(src)/8)
	for i := range values {
		values[i] = binary.BigEndian.Uint64(src[i*8:])
	}
	return values, nil
}
