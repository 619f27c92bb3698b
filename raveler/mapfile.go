/*
	Package raveler reads the products of a Raveler export: the superpixel to segment
	and segment to body mapping files and the per-plane superpixel PNG images.
*/
package raveler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
)

// ParseError describes a malformed line in a mapping file.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s, line %d (%q): %v", e.File, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// scanFields calls f with the unsigned integer fields of each data line.  Blank
// lines and lines starting with '#' are skipped.
func scanFields(r io.Reader, name string, numFields int, f func(vals []uint64) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*dvid.Kilo), dvid.Mega)
	vals := make([]uint64, numFields)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != numFields {
			return &ParseError{name, lineNum, line, fmt.Errorf("expected %d fields, got %d", numFields, len(fields))}
		}
		for i, field := range fields {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return &ParseError{name, lineNum, line, err}
			}
			vals[i] = v
		}
		if err := f(vals); err != nil {
			return &ParseError{name, lineNum, line, err}
		}
	}
	return scanner.Err()
}

func readerName(r io.Reader) string {
	if f, ok := r.(*os.File); ok {
		return f.Name()
	}
	return "mapping"
}

// ReadSuperpixelToSegment parses lines of "<plane> <superpixel> <segment>" into one
// sorted mapping per plane.
func ReadSuperpixelToSegment(r io.Reader) (map[labels.PlaneIndex]*labels.SortedMapping, error) {
	pairs := make(map[labels.PlaneIndex][]labels.Pair)
	err := scanFields(r, readerName(r), 3, func(vals []uint64) error {
		if vals[0] > 1<<31-1 {
			return fmt.Errorf("plane %d out of range", vals[0])
		}
		z := labels.PlaneIndex(vals[0])
		pairs[z] = append(pairs[z], labels.Pair{From: vals[1], To: vals[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	mappings := make(map[labels.PlaneIndex]*labels.SortedMapping, len(pairs))
	for z, planePairs := range pairs {
		m, err := labels.NewSortedMapping(planePairs)
		if err != nil {
			return nil, fmt.Errorf("superpixel map for %s: %w", z, err)
		}
		mappings[z] = m
	}
	return mappings, nil
}

// ReadSegmentToBody parses lines of "<segment> <body>" into a sorted mapping.
func ReadSegmentToBody(r io.Reader) (*labels.SortedMapping, error) {
	var pairs []labels.Pair
	err := scanFields(r, readerName(r), 2, func(vals []uint64) error {
		pairs = append(pairs, labels.Pair{From: vals[0], To: vals[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	m, err := labels.NewSortedMapping(pairs)
	if err != nil {
		return nil, fmt.Errorf("segment to body map: %w", err)
	}
	return m, nil
}

// Mappings holds the per-plane superpixel to segment maps and the global segment
// to body map of a Raveler export.
type Mappings struct {
	SuperpixelToSegment map[labels.PlaneIndex]*labels.SortedMapping
	SegmentToBody       *labels.SortedMapping
}

// Plane returns the superpixel to segment mapping for a plane.
func (m *Mappings) Plane(z labels.PlaneIndex) (*labels.SortedMapping, error) {
	spmap, found := m.SuperpixelToSegment[z]
	if !found {
		return nil, &labels.MissingPlaneIndexError{Plane: z}
	}
	return spmap, nil
}

// PlaneIndices returns the planes with superpixel maps in ascending order.
func (m *Mappings) PlaneIndices() []labels.PlaneIndex {
	planes := make([]labels.PlaneIndex, 0, len(m.SuperpixelToSegment))
	for z := range m.SuperpixelToSegment {
		planes = append(planes, z)
	}
	sort.Slice(planes, func(i, j int) bool { return planes[i] < planes[j] })
	return planes
}

// LoadMappings reads both mapping files of a Raveler export.
func LoadMappings(spToSegPath, segToBodyPath string) (*Mappings, error) {
	timedLog := dvid.NewTimeLog()

	f, err := os.Open(spToSegPath)
	if err != nil {
		return nil, err
	}
	spToSeg, err := ReadSuperpixelToSegment(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = os.Open(segToBodyPath)
	if err != nil {
		return nil, err
	}
	segToBody, err := ReadSegmentToBody(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	m := &Mappings{SuperpixelToSegment: spToSeg, SegmentToBody: segToBody}
	timedLog.Infof("Parsed mappings: %d planes, %d segments, %s in memory",
		len(spToSeg), segToBody.Len(), humanize.Bytes(uint64(size.Of(m))))
	return m, nil
}
