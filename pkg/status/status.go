// Package status defines per-course completion states and the versioned
// store that holds them for one student session.
//
// A [Store] is owned by its caller and passed explicitly to the functions that
// read it; there is no package-level state. The prerequisite gate and the
// credit aggregator only need the read side, [Reader].
package status

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned by [Parse] for unknown status codes.
var ErrInvalidStatus = errors.New("invalid status")

// Status is the completion state of one course for one student.
type Status int

const (
	// Unset means the student has not recorded anything for the course.
	Unset Status = iota
	// InProgress means the student is currently taking the course.
	InProgress
	// Passed means the student completed the course.
	Passed
	// Failed means the student took the course and did not pass.
	Failed
)

// Wire codes used by the records API and persistence backends.
const (
	CodeNone       = "none"
	CodeInProgress = "ing"
	CodePassed     = "pass"
	CodeFailed     = "fail"
)

// Code returns the wire code of s. Unset is encoded as "none".
func (s Status) Code() string {
	switch s {
	case InProgress:
		return CodeInProgress
	case Passed:
		return CodePassed
	case Failed:
		return CodeFailed
	}
	return CodeNone
}

// String returns a human-readable name.
func (s Status) String() string {
	switch s {
	case Unset:
		return "unset"
	case InProgress:
		return "in-progress"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the four defined states.
func (s Status) Valid() bool { return s >= Unset && s <= Failed }

// Parse decodes a wire code. The empty string and "none" decode to Unset.
// Long names ("passed", "in-progress", ...) are accepted as well.
func Parse(code string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", CodeNone, "unset":
		return Unset, nil
	case CodeInProgress, "in-progress", "in_progress":
		return InProgress, nil
	case CodePassed, "passed":
		return Passed, nil
	case CodeFailed, "failed":
		return Failed, nil
	}
	return Unset, fmt.Errorf("%w: %q", ErrInvalidStatus, code)
}

// MarshalText encodes s as its wire code.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.Code()), nil
}

// UnmarshalText decodes a wire code with [Parse].
func (s *Status) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Reader is the read side of a status map. Courses without an entry are Unset.
type Reader interface {
	Get(courseID int) Status
}

// Map is a plain status map that satisfies [Reader]. Unset entries should be
// omitted rather than stored.
type Map map[int]Status

// Get returns the status of a course, or Unset when absent.
func (m Map) Get(courseID int) Status { return m[courseID] }

// Codes returns the wire form of m, skipping Unset entries.
func (m Map) Codes() map[int]string {
	out := make(map[int]string, len(m))
	for id, s := range m {
		if s != Unset {
			out[id] = s.Code()
		}
	}
	return out
}

// ParseCodes decodes a wire-form status map. Unset entries are dropped.
func ParseCodes(codes map[int]string) (Map, error) {
	m := make(Map, len(codes))
	for id, code := range codes {
		s, err := Parse(code)
		if err != nil {
			return nil, fmt.Errorf("course %d: %w", id, err)
		}
		if s != Unset {
			m[id] = s
		}
	}
	return m, nil
}
