// Package storage provides the catalog sources and per-student record stores
// that feed the pipeline.
//
// A [CatalogSource] delivers the raw course list, the prerequisite pairs and
// the departments. A [RecordStore] persists the completion status of each
// (student, course) pair. Implementations:
//
//	FileCatalog      JSON document on disk
//	PostgresCatalog  courses, categories and course_prerequisite tables
//	MongoCatalog     courses, prerequisites and departments collections
//
//	MemoryRecords    process memory, for tests and single-user CLI runs
//	FileRecords      one JSON file per student
//	RedisRecords     one hash per student
//	PostgresRecords  student_course_records table
//	MongoRecords     records collection
//
// Storing [status.Unset] deletes the record. Stores never check
// prerequisites; they only persist decisions that have already been accepted.
package storage

import (
	"context"
	"errors"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/status"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store is closed")

// Department is one academic department.
type Department struct {
	ID   int    `json:"dept_id" bson:"dept_id"`
	Name string `json:"dept_name" bson:"dept_name"`
}

// Catalog is a complete catalog snapshot.
type Catalog struct {
	Departments   []Department        `json:"departments"`
	Courses       []catalog.RawCourse `json:"courses"`
	Prerequisites []catalog.Pair      `json:"prerequisites"`
}

// CatalogSource loads catalog snapshots.
type CatalogSource interface {
	// LoadCatalog returns the current catalog.
	LoadCatalog(ctx context.Context) (*Catalog, error)
	// Name identifies the source in logs ("file", "postgres", "mongo").
	Name() string
	Close() error
}

// RecordStore persists per-student course statuses.
type RecordStore interface {
	// Records returns every non-unset status of a student.
	Records(ctx context.Context, studentID string) (status.Map, error)
	// PutRecord stores one status. Unset deletes the record.
	PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error
	Close() error
}
