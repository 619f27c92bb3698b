package dvid

import (
	"path/filepath"
	"testing"
)

func TestDataTypes(t *testing.T) {
	for _, name := range []string{"uint8", "uint16", "uint32", "uint64"} {
		dt, err := ParseDataType(name)
		if err != nil {
			t.Fatal(err)
		}
		if dt.String() != name {
			t.Errorf("expected %s, got %s", name, dt)
		}
	}
	if DataTypeBytes(T_uint64) != 8 || DataTypeBytes(T_uint16) != 2 {
		t.Errorf("bad data type sizes")
	}
	if _, err := ParseDataType("float32"); err == nil {
		t.Errorf("expected error on float32 data type")
	}
}

func TestUint64s(t *testing.T) {
	values := []uint64{0, 1, 0xFFFFFF, 1 << 40}
	buf := make([]byte, 8*len(values))
	PutUint64s(buf, values)
	if buf[15] != 1 {
		t.Errorf("expected big-endian layout, got %v", buf[8:16])
	}
	got, err := Uint64s(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d: expected %d, got %d", i, values[i], got[i])
		}
	}
	if _, err := Uint64s(buf[:7]); err == nil {
		t.Errorf("expected error on truncated buffer")
	}
}

func TestConvertToAbsolute(t *testing.T) {
	dir := t.TempDir()
	got, err := ConvertToAbsolute("logs/sp2body.log", dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "logs", "sp2body.log") {
		t.Errorf("got %q", got)
	}
	if got, _ := ConvertToAbsolute("/tmp/x", dir); got != "/tmp/x" {
		t.Errorf("absolute path changed: %q", got)
	}
	if NumCPU(3) != 3 || NumCPU(0) < 1 {
		t.Errorf("bad NumCPU")
	}
}
