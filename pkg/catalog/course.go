package catalog

// UniversalDeptID marks a course shared by every department.
const UniversalDeptID = 0

// Level encodes the recommended (year, semester) of a course as
// 2*(year-1)+semester, so 1 is first-year fall and 8 is fourth-year spring.
type Level int

// LevelUnspecified is the row key used for courses without a valid level.
const LevelUnspecified Level = 999

// MinLevel and MaxLevel bound the valid levels.
const (
	MinLevel Level = 1
	MaxLevel Level = 8
)

// MakeLevel returns the level of the given year (1-based) and semester (1 or 2).
func MakeLevel(year, semester int) Level {
	return Level(2*(year-1) + semester)
}

// Valid reports whether l is within [MinLevel, MaxLevel].
func (l Level) Valid() bool { return l >= MinLevel && l <= MaxLevel }

// RowKey returns l for valid levels and [LevelUnspecified] otherwise.
func (l Level) RowKey() Level {
	if l.Valid() {
		return l
	}
	return LevelUnspecified
}

// Year returns the 1-based study year, or 0 for invalid levels.
func (l Level) Year() int {
	if !l.Valid() {
		return 0
	}
	return (int(l)-1)/2 + 1
}

// Semester returns 1 (fall) or 2 (spring), or 0 for invalid levels.
func (l Level) Semester() int {
	if !l.Valid() {
		return 0
	}
	return (int(l)-1)%2 + 1
}

var levelText = [...]string{"", "一年級上", "一年級下", "二年級上", "二年級下", "三年級上", "三年級下", "四年級上", "四年級下"}

// Text returns the display label of the level (e.g. 二年級上), or 未指定.
func (l Level) Text() string {
	if !l.Valid() {
		return "未指定"
	}
	return levelText[l]
}

// Course is one catalog entry. Values are immutable snapshots; the core never
// writes them.
type Course struct {
	ID         int
	Name       string
	Credits    int
	Level      Level
	DeptID     int
	Type       CourseType
	Categories []Category
}

// Priority returns the layout priority of the course's categories.
func (c Course) Priority() Priority { return CategoryPriority(c.Categories) }

// Universal reports whether the course is shared across departments.
func (c Course) Universal() bool { return c.DeptID == UniversalDeptID }

// VisibleIn reports whether the course belongs to the department filter.
func (c Course) VisibleIn(deptID int) bool {
	return c.DeptID == deptID || c.Universal()
}

// Mandated reports whether any category of the course is compulsory.
func (c Course) Mandated() bool {
	for _, cat := range c.Categories {
		if cat.Kind.Mandated() {
			return true
		}
	}
	return false
}

// HasCategory reports whether any category of the course has kind k.
func (c Course) HasCategory(k CategoryKind) bool {
	for _, cat := range c.Categories {
		if cat.Kind == k {
			return true
		}
	}
	return false
}

// Labels returns the original category labels.
func (c Course) Labels() []string {
	labels := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		labels[i] = cat.Label
	}
	return labels
}

// RawCourse is the course record delivered by the catalog service.
type RawCourse struct {
	ID         int      `json:"course_id" bson:"course_id"`
	Name       string   `json:"course_name" bson:"course_name"`
	Credits    int      `json:"credits" bson:"credits"`
	Level      int      `json:"year_level" bson:"year_level"`
	DeptID     int      `json:"dept_id" bson:"dept_id"`
	Type       string   `json:"type,omitempty" bson:"type,omitempty"`
	Categories []string `json:"categories" bson:"categories"`
}

// Course converts the record, parsing category labels and the course type.
func (r RawCourse) Course() Course {
	return Course{
		ID:         r.ID,
		Name:       r.Name,
		Credits:    r.Credits,
		Level:      Level(r.Level),
		DeptID:     r.DeptID,
		Type:       ParseCourseType(r.Type),
		Categories: ParseCategories(r.Categories),
	}
}

// ConvertCourses converts every record with [RawCourse.Course].
func ConvertCourses(raw []RawCourse) []Course {
	out := make([]Course, len(raw))
	for i, r := range raw {
		out[i] = r.Course()
	}
	return out
}

// Pair is a raw prerequisite record: PrereqID must be passed before CourseID.
type Pair struct {
	CourseID int `json:"course_id" bson:"course_id"`
	PrereqID int `json:"prereq_id" bson:"prereq_id"`
}

// Edge is a directed prerequisite edge from the prerequisite to the course
// that requires it.
type Edge struct {
	From int // prerequisite course id
	To   int // dependent course id
}
