package catalog

import "strings"

// CategoryKind is the normalized code of a course category label.
type CategoryKind int

const (
	// CategoryOther is any label without a recognized meaning.
	CategoryOther CategoryKind = iota
	// CategorySchoolMandated is a university-wide required course (校定必修).
	CategorySchoolMandated
	// CategoryCollegeMandated is a college-wide required course (院定必修).
	CategoryCollegeMandated
	// CategoryDeptMandated is a department required course (系定必修).
	CategoryDeptMandated
	// CategoryDeptElective is a department elective (系定選修).
	CategoryDeptElective
	// CategoryOtherMandated is a required course of an unrecognized scope,
	// e.g. a bare 必修 label.
	CategoryOtherMandated
	// CategoryGeneralEducation is a general-education course (通識).
	CategoryGeneralEducation
)

var categoryNames = map[CategoryKind]string{
	CategoryOther:            "other",
	CategorySchoolMandated:   "school-mandated",
	CategoryCollegeMandated:  "college-mandated",
	CategoryDeptMandated:     "department-mandated",
	CategoryDeptElective:     "department-elective",
	CategoryOtherMandated:    "mandated",
	CategoryGeneralEducation: "general-education",
}

// String returns the stable code of the kind (e.g. "school-mandated").
func (k CategoryKind) String() string {
	if s, ok := categoryNames[k]; ok {
		return s
	}
	return "other"
}

// Mandated reports whether courses of this kind are compulsory.
func (k CategoryKind) Mandated() bool {
	switch k {
	case CategorySchoolMandated, CategoryCollegeMandated, CategoryDeptMandated, CategoryOtherMandated:
		return true
	}
	return false
}

// Priority returns the layout priority of the kind. Lower sorts first.
func (k CategoryKind) Priority() Priority {
	switch k {
	case CategorySchoolMandated:
		return PrioritySchool
	case CategoryCollegeMandated:
		return PriorityCollege
	case CategoryDeptMandated:
		return PriorityDepartment
	case CategoryDeptElective:
		return PriorityElective
	}
	return PriorityOther
}

// Category is a course category: its normalized kind plus the label it was
// parsed from, kept for display.
type Category struct {
	Kind  CategoryKind
	Label string
}

// labelRule maps a label fragment to a kind. Rules are tried in order, so
// scoped mandates must precede the bare 必修 fallback.
type labelRule struct {
	fragment string
	kind     CategoryKind
}

var labelRules = []labelRule{
	{"校定必修", CategorySchoolMandated},
	{"school-mandated", CategorySchoolMandated},
	{"院定必修", CategoryCollegeMandated},
	{"college-mandated", CategoryCollegeMandated},
	{"系定必修", CategoryDeptMandated},
	{"department-mandated", CategoryDeptMandated},
	{"系定選修", CategoryDeptElective},
	{"department-elective", CategoryDeptElective},
	{"必修", CategoryOtherMandated},
	{"mandated", CategoryOtherMandated},
	{"compulsory", CategoryOtherMandated},
	{"通識", CategoryGeneralEducation},
	{"general-education", CategoryGeneralEducation},
}

// ParseCategory maps a free-text label to a [Category].
//
// This is the only place where labels are matched by substring. Matching is
// case-insensitive for the English codes. Unrecognized labels yield
// [CategoryOther].
func ParseCategory(label string) Category {
	lower := strings.ToLower(strings.TrimSpace(label))
	for _, r := range labelRules {
		if strings.Contains(lower, r.fragment) {
			return Category{Kind: r.kind, Label: label}
		}
	}
	return Category{Kind: CategoryOther, Label: label}
}

// ParseCategories maps every label with [ParseCategory], preserving order.
func ParseCategories(labels []string) []Category {
	if len(labels) == 0 {
		return nil
	}
	cats := make([]Category, len(labels))
	for i, l := range labels {
		cats[i] = ParseCategory(l)
	}
	return cats
}

// CourseType is the normalized legacy "type" column of a course.
type CourseType int

const (
	TypeUnknown CourseType = iota
	TypeCompulsory
	TypeGeneral
)

func (t CourseType) String() string {
	switch t {
	case TypeCompulsory:
		return "compulsory"
	case TypeGeneral:
		return "general"
	}
	return "unknown"
}

// ParseCourseType maps the free-text course type. Compulsory wins over
// general education when both fragments appear.
func ParseCourseType(s string) CourseType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "必修"), strings.Contains(lower, "compulsory"), strings.Contains(lower, "mandated"):
		return TypeCompulsory
	case strings.Contains(lower, "通識"), strings.Contains(lower, "general"):
		return TypeGeneral
	}
	return TypeUnknown
}

// Priority orders courses inside a layout row.
type Priority int

const (
	PrioritySchool     Priority = 1
	PriorityCollege    Priority = 2
	PriorityDepartment Priority = 3
	PriorityElective   Priority = 4
	PriorityOther      Priority = 10
	// PriorityNone is used for courses without categories or with an
	// unspecified level.
	PriorityNone Priority = 99
)

// CategoryPriority returns the most restrictive priority across cats, or
// [PriorityNone] when cats is empty.
func CategoryPriority(cats []Category) Priority {
	if len(cats) == 0 {
		return PriorityNone
	}
	best := PriorityNone
	for _, c := range cats {
		if p := c.Kind.Priority(); p < best {
			best = p
		}
	}
	return best
}
