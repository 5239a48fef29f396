package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/status"
)

// FileCatalog reads a catalog JSON document:
//
//	{"departments": [...], "courses": [...], "prerequisites": [...]}
type FileCatalog struct {
	path string
}

// NewFileCatalog creates a catalog source for the file at path.
func NewFileCatalog(path string) (*FileCatalog, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileCatalog{path: path}, nil
}

// Path returns the catalog file path.
func (f *FileCatalog) Path() string { return f.path }

// LoadCatalog reads and decodes the file.
func (f *FileCatalog) LoadCatalog(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "catalog file %s not found", f.path)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read catalog file")
	}
	return DecodeCatalog(data)
}

// Name returns "file".
func (f *FileCatalog) Name() string { return "file" }

// Close does nothing.
func (f *FileCatalog) Close() error { return nil }

// DecodeCatalog decodes a catalog JSON document.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	return &c, nil
}

// FileRecords stores each student's records as a JSON object
// {"<course_id>": "<code>"} in <dir>/<student>.json.
type FileRecords struct {
	mu  sync.RWMutex
	dir string
}

// NewFileRecords creates a file record store. An empty dir defaults to
// ~/.config/coursemap/records.
func NewFileRecords(dir string) (*FileRecords, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "coursemap", "records")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}
	return &FileRecords{dir: dir}, nil
}

// Dir returns the base directory.
func (f *FileRecords) Dir() string { return f.dir }

func (f *FileRecords) path(studentID string) (string, error) {
	if err := errors.ValidateStudentID(studentID); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, studentID+".json"), nil
}

// Records reads a student's records. A missing file means no records.
func (f *FileRecords) Records(ctx context.Context, studentID string) (status.Map, error) {
	path, err := f.path(studentID)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return readRecordFile(path)
}

// PutRecord rewrites the student's file with one status changed.
func (f *FileRecords) PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error {
	path, err := f.path(studentID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	recs, err := readRecordFile(path)
	if err != nil {
		return err
	}
	if st == status.Unset {
		delete(recs, courseID)
	} else {
		recs[courseID] = st
	}

	data, err := json.MarshalIndent(recs.Codes(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write records file")
	}
	return nil
}

// Close does nothing.
func (f *FileRecords) Close() error { return nil }

func readRecordFile(path string) (status.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return status.Map{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read records file")
	}

	var codes map[string]string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse records file %s", filepath.Base(path))
	}
	return decodeCodes(codes)
}

// decodeCodes converts a {"<course_id>": "<code>"} map, the shape shared by
// the file and Redis backends.
func decodeCodes(codes map[string]string) (status.Map, error) {
	byID := make(map[int]string, len(codes))
	for k, v := range codes {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.New(errors.ErrCodeStorage, "invalid course id %q in records", k)
		}
		byID[id] = v
	}
	m, err := status.ParseCodes(byID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "invalid record")
	}
	return m, nil
}

var (
	_ CatalogSource = (*FileCatalog)(nil)
	_ RecordStore   = (*FileRecords)(nil)
)
