package raveler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/janelia-flyem/sp2body/labels"
)

// DefaultPlanePattern matches superpixel file names ending in the plane number, e.g.,
// sp_map.00100.png.  The first subexpression must capture the plane number.
const DefaultPlanePattern = `^.*\D(\d+)\.png$`

var defaultPlaneRegexp = regexp.MustCompile(DefaultPlanePattern)

// PlaneFilenameError is returned when a file name holds no plane index.
type PlaneFilenameError struct {
	Path    string
	Pattern string
}

func (e *PlaneFilenameError) Error() string {
	return fmt.Sprintf("could not extract plane index from image path %q using pattern %q", e.Path, e.Pattern)
}

// PlaneFile associates a superpixel image file with its plane index.
type PlaneFile struct {
	Path  string
	Plane labels.PlaneIndex
}

// PlaneFromFilename extracts the plane index from a file path.  If re is nil, the
// default pattern is used.
func PlaneFromFilename(path string, re *regexp.Regexp) (labels.PlaneIndex, error) {
	if re == nil {
		re = defaultPlaneRegexp
	}
	matches := re.FindStringSubmatch(path)
	if len(matches) < 2 {
		return 0, &PlaneFilenameError{Path: path, Pattern: re.String()}
	}
	z, err := strconv.ParseInt(matches[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad plane index in %q: %w", path, err)
	}
	return labels.PlaneIndex(z), nil
}

// PlaneFiles returns the files paired with their plane indices in ascending plane order.
func PlaneFiles(paths []string, re *regexp.Regexp) ([]PlaneFile, error) {
	files := make([]PlaneFile, len(paths))
	for i, path := range paths {
		z, err := PlaneFromFilename(path, re)
		if err != nil {
			return nil, err
		}
		files[i] = PlaneFile{Path: path, Plane: z}
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Plane < files[j].Plane })
	for i := 1; i < len(files); i++ {
		if files[i].Plane == files[i-1].Plane {
			return nil, &labels.DuplicatePlaneError{Plane: files[i].Plane}
		}
	}
	return files, nil
}
