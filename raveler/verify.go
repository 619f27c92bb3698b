package raveler

import (
	"fmt"
	"strings"

	"github.com/janelia-flyem/sp2body/labels"
)

// MaxReportedProblems is the number of problems listed in a Report before
// further problems are only counted.
const MaxReportedProblems = 30

// Report summarizes the consistency of mappings against a set of planes.
type Report struct {
	Planes         int
	Superpixels    int
	Segments       uint64
	Bodies         uint64
	UnusedSegments uint64 // segments with a body that no verified superpixel references

	NumProblems int
	Problems    []string
}

func (r *Report) problem(format string, args ...interface{}) {
	r.NumProblems++
	if len(r.Problems) < MaxReportedProblems {
		r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
	}
}

// OK returns true if no problems were found.
func (r *Report) OK() bool {
	return r.NumProblems == 0
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d planes, %d superpixels, %d segments, %d bodies, %d unused segments\n",
		r.Planes, r.Superpixels, r.Segments, r.Bodies, r.UnusedSegments)
	for _, p := range r.Problems {
		fmt.Fprintf(&sb, "ERROR: %s\n", p)
	}
	if r.NumProblems > len(r.Problems) {
		fmt.Fprintf(&sb, "... %d more errors\n", r.NumProblems-len(r.Problems))
	}
	return sb.String()
}

// Verify checks that every given plane has a superpixel map and that every segment
// those maps reference has a body.  If planes is nil, all mapped planes are checked.
func Verify(m *Mappings, planes []labels.PlaneIndex) *Report {
	if planes == nil {
		planes = m.PlaneIndices()
	}
	r := new(Report)
	segments := labels.NewLabelSet()
	bodies := labels.NewLabelSet()
	for _, z := range planes {
		spmap, err := m.Plane(z)
		if err != nil {
			r.problem("%v", err)
			continue
		}
		r.Planes++
		r.Superpixels += spmap.Len()
		spmap.Range(func(sp, seg uint64) bool {
			if segments.Contains(seg) {
				return true
			}
			segments.Add(seg)
			body, found := m.SegmentToBody.Lookup(seg)
			if !found {
				r.problem("superpixel %d in %s maps to segment %d which has no body", sp, z, seg)
				return true
			}
			bodies.Add(body)
			return true
		})
	}
	r.Segments = segments.Len()
	r.Bodies = bodies.Len()
	mapped := labels.NewLabelSet(m.SegmentToBody.Keys()...)
	r.UnusedSegments = mapped.Difference(segments).Len()
	return r
}
