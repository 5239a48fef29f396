// Package credits sums passed credits per graduation bucket.
package credits

import (
	"fmt"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/status"
)

// Requirements are the graduation credit targets per bucket.
type Requirements struct {
	Compulsory int `json:"compulsory" toml:"compulsory" yaml:"compulsory"`
	Elective   int `json:"elective" toml:"elective" yaml:"elective"`
	General    int `json:"general" toml:"general" yaml:"general"`
	Total      int `json:"total" toml:"total" yaml:"total"`
}

// DefaultRequirements returns the standard bachelor's targets.
func DefaultRequirements() Requirements {
	return Requirements{Compulsory: 60, Elective: 30, General: 28, Total: 128}
}

// Validate rejects negative targets.
func (r Requirements) Validate() error {
	for name, v := range map[string]int{
		"compulsory": r.Compulsory,
		"elective":   r.Elective,
		"general":    r.General,
		"total":      r.Total,
	} {
		if v < 0 {
			return fmt.Errorf("credits: %s requirement must be non-negative, got %d", name, v)
		}
	}
	return nil
}

// BucketKind names a credit bucket.
type BucketKind int

const (
	BucketElective BucketKind = iota
	BucketCompulsory
	BucketGeneral
)

func (k BucketKind) String() string {
	switch k {
	case BucketCompulsory:
		return "compulsory"
	case BucketGeneral:
		return "general"
	}
	return "elective"
}

// Classify returns the bucket a course counts toward. Mandated categories
// and a compulsory type take precedence over general education; everything
// else is elective.
func Classify(c catalog.Course) BucketKind {
	if c.Mandated() || c.Type == catalog.TypeCompulsory {
		return BucketCompulsory
	}
	if c.HasCategory(catalog.CategoryGeneralEducation) || c.Type == catalog.TypeGeneral {
		return BucketGeneral
	}
	return BucketElective
}

// Bucket is the progress toward one target.
type Bucket struct {
	Current  int `json:"current"`
	Required int `json:"total"`
}

// Remaining returns the credits still missing, never negative.
func (b Bucket) Remaining() int { return max(b.Required-b.Current, 0) }

// Done reports whether the target is met.
func (b Bucket) Done() bool { return b.Current >= b.Required }

// Summary is the aggregated progress of one student.
type Summary struct {
	Compulsory Bucket `json:"compulsory"`
	Elective   Bucket `json:"elective"`
	General    Bucket `json:"general"`
	Total      Bucket `json:"total"`
}

// Bucket returns the bucket of kind k.
func (s Summary) Bucket(k BucketKind) Bucket {
	switch k {
	case BucketCompulsory:
		return s.Compulsory
	case BucketGeneral:
		return s.General
	}
	return s.Elective
}

// Aggregate sums the credits of passed courses. Each passed course adds its
// credits to exactly one bucket and once to the total. Duplicate course ids
// in courses are counted once.
func Aggregate(courses []catalog.Course, statuses status.Reader, req Requirements) Summary {
	s := Summary{
		Compulsory: Bucket{Required: req.Compulsory},
		Elective:   Bucket{Required: req.Elective},
		General:    Bucket{Required: req.General},
		Total:      Bucket{Required: req.Total},
	}

	seen := make(map[int]bool, len(courses))
	for _, c := range courses {
		if seen[c.ID] || statuses.Get(c.ID) != status.Passed {
			continue
		}
		seen[c.ID] = true

		switch Classify(c) {
		case BucketCompulsory:
			s.Compulsory.Current += c.Credits
		case BucketGeneral:
			s.General.Current += c.Credits
		default:
			s.Elective.Current += c.Credits
		}
		s.Total.Current += c.Credits
	}
	return s
}
