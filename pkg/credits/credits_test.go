package credits

import (
	"testing"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/status"
)

func courses() []catalog.Course {
	return catalog.ConvertCourses([]catalog.RawCourse{
		{ID: 1, Credits: 3, Categories: []string{"校定必修"}},
		{ID: 2, Credits: 3, Categories: []string{"系定選修"}},
		{ID: 3, Credits: 2, Categories: []string{"通識"}},
		{ID: 4, Credits: 2, Categories: []string{"通識必修"}},
		{ID: 5, Credits: 4, Type: "必修"},
		{ID: 6, Credits: 1, Type: "通識"},
		{ID: 7, Credits: 3},
	})
}

func TestClassify(t *testing.T) {
	want := map[int]BucketKind{
		1: BucketCompulsory,
		2: BucketElective,
		3: BucketGeneral,
		4: BucketCompulsory,
		5: BucketCompulsory,
		6: BucketGeneral,
		7: BucketElective,
	}
	for _, c := range courses() {
		if got := Classify(c); got != want[c.ID] {
			t.Errorf("Classify(%d) = %v, want %v", c.ID, got, want[c.ID])
		}
	}
}

func TestAggregate(t *testing.T) {
	statuses := status.Map{
		1: status.Passed,
		2: status.Passed,
		3: status.Passed,
		4: status.InProgress,
		5: status.Passed,
		6: status.Failed,
	}
	got := Aggregate(courses(), statuses, DefaultRequirements())
	want := Summary{
		Compulsory: Bucket{Current: 7, Required: 60},
		Elective:   Bucket{Current: 3, Required: 30},
		General:    Bucket{Current: 2, Required: 28},
		Total:      Bucket{Current: 12, Required: 128},
	}
	if got != want {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}
	if got.Total.Current != got.Compulsory.Current+got.Elective.Current+got.General.Current {
		t.Error("total does not equal the sum of the buckets")
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	statuses := status.NewStore(status.Map{1: status.Passed, 3: status.Passed})
	first := Aggregate(courses(), statuses, DefaultRequirements())
	second := Aggregate(courses(), statuses, DefaultRequirements())
	if first != second {
		t.Errorf("aggregate differs between calls: %+v vs %+v", first, second)
	}
}

func TestAggregate_DuplicateCourse(t *testing.T) {
	cs := append(courses(), courses()[0])
	got := Aggregate(cs, status.Map{1: status.Passed}, Requirements{})
	if got.Compulsory.Current != 3 || got.Total.Current != 3 {
		t.Errorf("duplicate course counted twice: %+v", got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, status.Map{}, DefaultRequirements())
	if got.Total.Current != 0 || got.Total.Required != 128 {
		t.Errorf("Aggregate(nil) = %+v", got)
	}
}

func TestBucket(t *testing.T) {
	b := Bucket{Current: 10, Required: 28}
	if b.Remaining() != 18 || b.Done() {
		t.Errorf("bucket %+v: remaining %d, done %v", b, b.Remaining(), b.Done())
	}
	over := Bucket{Current: 30, Required: 28}
	if over.Remaining() != 0 || !over.Done() {
		t.Errorf("bucket %+v: remaining %d, done %v", over, over.Remaining(), over.Done())
	}
}

func TestRequirements_Validate(t *testing.T) {
	if err := DefaultRequirements().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	if err := (Requirements{Elective: -1}).Validate(); err == nil {
		t.Error("negative requirement accepted")
	}
}
