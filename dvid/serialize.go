/*
	This file supports serialization/deserialization and compression of data.
*/

package dvid

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the format of compression for storing data.
// NOTE: Should be no more than 8 (3 bits) of compression types.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	LZ4
	Gzip
	Zstd
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "No compression"
	case Snappy:
		return "Go Snappy compression"
	case LZ4:
		return "Go LZ4 compression"
	case Gzip:
		return "gzip compression"
	case Zstd:
		return "Zstandard compression"
	default:
		return "Unknown compression"
	}
}

// Name returns the short name used in configuration files.
func (compress Compression) Name() string {
	switch compress {
	case Uncompressed:
		return "none"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression returns the Compression for a short name like "snappy".
// The names "", "none" and "raw" all mean no compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none", "raw":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	case "gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	default:
		return Uncompressed, fmt.Errorf("unknown compression %q", name)
	}
}

// Checksum is the type of checksum employed for error checking stored data.
// NOTE: Should be no more than 4 (2 bits) of checksum types.
type Checksum uint8

const (
	NoChecksum Checksum = iota
	CRC32
)

func (checksum Checksum) String() string {
	switch checksum {
	case NoChecksum:
		return "No checksum"
	case CRC32:
		return "CRC32 checksum"
	default:
		return "Unknown checksum"
	}
}

// SerializationFormat is a single byte combining both compression and checksum methods.
type SerializationFormat uint8

func EncodeSerializationFormat(compress Compression, checksum Checksum) SerializationFormat {
	a := (uint8(compress) & 0x07) << 5
	b := (uint8(checksum) & 0x03) << 3
	return SerializationFormat(a | b)
}

func DecodeSerializationFormat(s SerializationFormat) (compress Compression, checksum Checksum) {
	compress = Compression(uint8(s) >> 5)
	checksum = Checksum((uint8(s) >> 3) & 0x03)
	return
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil)
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// GzipBytes compresses data using gzip at the given level.
func GzipBytes(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GunzipBytes uncompresses gzip data.
func GunzipBytes(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// compressBytes returns the compressed data and the compression actually used.
// LZ4 falls back to Uncompressed when the block would not be smaller than the input.
func compressBytes(data []byte, compress Compression) ([]byte, Compression, error) {
	switch compress {
	case Uncompressed:
		return data, Uncompressed, nil
	case Snappy:
		return snappy.Encode(nil, data), Snappy, nil
	case LZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data))+4)
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)))
		var c lz4.Compressor
		n, err := c.CompressBlock(data, out[4:])
		if err != nil {
			return nil, compress, err
		}
		if n == 0 || 4+n >= len(data) {
			return data, Uncompressed, nil
		}
		return out[:4+n], LZ4, nil
	case Gzip:
		out, err := GzipBytes(data, gzip.BestSpeed)
		return out, Gzip, err
	case Zstd:
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, compress, err
		}
		return enc.EncodeAll(data, nil), Zstd, nil
	default:
		return nil, compress, fmt.Errorf("illegal compression (%s) during serialization", compress)
	}
}

func uncompressBytes(cdata []byte, compress Compression) ([]byte, error) {
	switch compress {
	case Uncompressed:
		return cdata, nil
	case Snappy:
		return snappy.Decode(nil, cdata)
	case LZ4:
		if len(cdata) < 4 {
			return nil, fmt.Errorf("lz4 payload too short (%d bytes)", len(cdata))
		}
		origSize := binary.LittleEndian.Uint32(cdata[0:4])
		data := make([]byte, int(origSize))
		n, err := lz4.UncompressBlock(cdata[4:], data)
		if err != nil {
			return nil, err
		}
		if n != int(origSize) {
			return nil, fmt.Errorf("lz4 uncompressed %d bytes, expected %d", n, origSize)
		}
		return data, nil
	case Gzip:
		return GunzipBytes(cdata)
	case Zstd:
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(cdata, nil)
	default:
		return nil, fmt.Errorf("illegal compression format (%d) in deserialization", compress)
	}
}

// SerializeData serializes a slice of bytes using optional compression, checksum.
func SerializeData(data []byte, compress Compression, checksum Checksum) ([]byte, error) {
	byteData, used, err := compressBytes(data, compress)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	format := EncodeSerializationFormat(used, checksum)
	if err := buffer.WriteByte(byte(format)); err != nil {
		return nil, err
	}

	switch checksum {
	case NoChecksum:
	case CRC32:
		crcChecksum := crc32.ChecksumIEEE(byteData)
		if err := binary.Write(&buffer, binary.LittleEndian, crcChecksum); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("illegal checksum (%s) in SerializeData()", checksum)
	}

	// Note the actual data is written last, after any checksum so we don't have to
	// worry about length when deserializing.
	if _, err := buffer.Write(byteData); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeData deserializes a slice of bytes using stored compression, checksum.
// If uncompress parameter is false, the data is not uncompressed.
func DeserializeData(s []byte, uncompress bool) (data []byte, compress Compression, err error) {
	if len(s) == 0 {
		err = fmt.Errorf("cannot deserialize empty data")
		return
	}
	var checksum Checksum
	compress, checksum = DecodeSerializationFormat(SerializationFormat(s[0]))
	cdata := s[1:]

	switch checksum {
	case NoChecksum:
	case CRC32:
		if len(cdata) < 4 {
			err = fmt.Errorf("serialized data too short for CRC32 checksum")
			return
		}
		storedCrc32 := binary.LittleEndian.Uint32(cdata[0:4])
		cdata = cdata[4:]
		if crcChecksum := crc32.ChecksumIEEE(cdata); crcChecksum != storedCrc32 {
			err = fmt.Errorf("bad checksum.  Stored %x got %x", storedCrc32, crcChecksum)
			return
		}
	default:
		err = fmt.Errorf("illegal checksum in deserializing data")
		return
	}

	if !uncompress {
		data = cdata
		return
	}
	data, err = uncompressBytes(cdata, compress)
	return
}
