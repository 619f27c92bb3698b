package dvid

import (
	"path/filepath"
	"runtime"
)

const (
	Kilo = 1 << 10
	Mega = 1 << 20
	Giga = 1 << 30
	Tera = 1 << 40
)

// NumCPU returns the number of workers to use given a requested count.
// Non-positive requests return the number of logical CPUs.
func NumCPU(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}

// ConvertToAbsolute returns an absolute path for a path that may be relative
// to the given directory.
func ConvertToAbsolute(path, dir string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	if !filepath.IsAbs(dir) {
		var err error
		if dir, err = filepath.Abs(dir); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, path), nil
}
