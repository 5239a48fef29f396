package catalog_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/coursemap/pkg/catalog"
)

func ExampleNormalize() {
	courses := catalog.ConvertCourses([]catalog.RawCourse{
		{ID: 1, Name: "Calculus", Credits: 3, Level: 1, Categories: []string{"校定必修"}},
		{ID: 2, Name: "Programming", Credits: 3, Level: 1, DeptID: 5, Categories: []string{"系定必修"}},
		{ID: 3, Name: "Data Structures", Credits: 3, Level: 3, DeptID: 5, Categories: []string{"系定必修"}},
	})
	pairs := []catalog.Pair{
		{CourseID: 3, PrereqID: 2},
		{CourseID: 3, PrereqID: 99}, // unknown course, dropped
	}

	g, err := catalog.Normalize(courses, pairs)
	if err != nil {
		panic(err)
	}

	fmt.Println("Courses:", g.NodeCount())
	fmt.Println("Edges:", g.Edges())
	fmt.Println("Prerequisites of 3:", g.Prerequisites(3))
	for _, w := range g.Warnings() {
		fmt.Println("Warning:", w)
	}
	// Output:
	// Courses: 3
	// Edges: [{2 3}]
	// Prerequisites of 3: [2]
	// Warning: prerequisite 99 -> 3: unknown course
}

func ExampleGraph_Validate() {
	courses := []catalog.Course{{ID: 1, Level: 1}, {ID: 2, Level: 2}}
	pairs := []catalog.Pair{{CourseID: 2, PrereqID: 1}, {CourseID: 1, PrereqID: 2}}

	g, _ := catalog.Normalize(courses, pairs)
	err := g.Validate()

	fmt.Println(errors.Is(err, catalog.ErrGraphHasCycle))
	fmt.Println(err)
	// Output:
	// true
	// prerequisite graph contains a cycle: 1 -> 2 -> 1
}
