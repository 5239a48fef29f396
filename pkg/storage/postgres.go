package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/status"
)

// PostgresOptions configures [OpenPostgres].
type PostgresOptions struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenPostgres creates a connection pool and pings it. Unreachable servers
// are retried with [cache.RetryWithBackoff].
func OpenPostgres(ctx context.Context, opts PostgresOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse postgres dsn")
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create postgres pool")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := pool.Ping(ctx); err != nil {
			return cache.Retryable(fmt.Errorf("%w: postgres: %v", cache.ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to postgres")
	}
	return pool, nil
}

// psql builds statements with dollar placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresCatalog reads the catalog from the courses, categories,
// course_category_map, course_prerequisite and departments tables.
type PostgresCatalog struct {
	db *pgxpool.Pool
}

// NewPostgresCatalog creates a catalog source over pool.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{db: pool}
}

// Name returns "postgres".
func (p *PostgresCatalog) Name() string { return "postgres" }

// Close closes the pool.
func (p *PostgresCatalog) Close() error {
	p.db.Close()
	return nil
}

// LoadCatalog reads all departments, courses, category labels and
// prerequisite pairs.
func (p *PostgresCatalog) LoadCatalog(ctx context.Context) (*Catalog, error) {
	depts, err := p.departments(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := p.courses(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := p.prerequisites(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{Departments: depts, Courses: courses, Prerequisites: pairs}, nil
}

func (p *PostgresCatalog) departments(ctx context.Context) ([]Department, error) {
	sql, args, err := psql.Select("dept_id", "dept_name").From("departments").OrderBy("dept_id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build departments query: %w", err)
	}
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query departments")
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan department")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate departments")
	}
	return out, nil
}

func (p *PostgresCatalog) courses(ctx context.Context) ([]catalog.RawCourse, error) {
	sql, args, err := psql.
		Select("c.course_id", "c.course_name", "c.credits", "COALESCE(c.year_level, 0)",
			"COALESCE(c.dept_id, 0)", "COALESCE(c.type, '')").
		From("courses c").
		OrderBy("c.course_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build courses query: %w", err)
	}
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query courses")
	}
	defer rows.Close()

	var out []catalog.RawCourse
	index := make(map[int]int)
	for rows.Next() {
		var c catalog.RawCourse
		if err := rows.Scan(&c.ID, &c.Name, &c.Credits, &c.Level, &c.DeptID, &c.Type); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan course")
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate courses")
	}

	sql, args, err = psql.
		Select("m.course_id", "cat.category_name").
		From("course_category_map m").
		Join("categories cat ON m.category_id = cat.category_id").
		OrderBy("m.course_id ASC", "cat.category_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}
	catRows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query categories")
	}
	defer catRows.Close()

	for catRows.Next() {
		var id int
		var label string
		if err := catRows.Scan(&id, &label); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan category")
		}
		if i, ok := index[id]; ok {
			out[i].Categories = append(out[i].Categories, label)
		}
	}
	if err := catRows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate categories")
	}
	return out, nil
}

func (p *PostgresCatalog) prerequisites(ctx context.Context) ([]catalog.Pair, error) {
	sql, args, err := psql.Select("course_id", "prereq_id").From("course_prerequisite").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prerequisites query: %w", err)
	}
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query prerequisites")
	}
	defer rows.Close()

	var out []catalog.Pair
	for rows.Next() {
		var pr catalog.Pair
		if err := rows.Scan(&pr.CourseID, &pr.PrereqID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan prerequisite")
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate prerequisites")
	}
	return out, nil
}

// PostgresRecords persists statuses in student_course_records
// (user_id, course_id, status, updated_at) with a unique (user_id, course_id).
type PostgresRecords struct {
	db *pgxpool.Pool
}

// NewPostgresRecords creates a record store over pool.
func NewPostgresRecords(pool *pgxpool.Pool) *PostgresRecords {
	return &PostgresRecords{db: pool}
}

// Records returns the statuses of one student.
func (p *PostgresRecords) Records(ctx context.Context, studentID string) (status.Map, error) {
	sql, args, err := psql.
		Select("course_id", "status").
		From("student_course_records").
		Where(squirrel.Eq{"user_id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build records query: %w", err)
	}
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query records")
	}
	defer rows.Close()

	codes := make(map[int]string)
	for rows.Next() {
		var id int
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan record")
		}
		codes[id] = code
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate records")
	}

	m, err := status.ParseCodes(codes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "invalid record")
	}
	return m, nil
}

// PutRecord upserts one status, or deletes the row for Unset.
func (p *PostgresRecords) PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error {
	sql, args, err := recordStatement(studentID, courseID, st)
	if err != nil {
		return fmt.Errorf("build record statement: %w", err)
	}
	if _, err := p.db.Exec(ctx, sql, args...); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write record")
	}
	return nil
}

// recordStatement builds the delete or upsert for one record.
func recordStatement(studentID string, courseID int, st status.Status) (string, []any, error) {
	if st == status.Unset {
		return psql.Delete("student_course_records").
			Where(squirrel.Eq{"user_id": studentID, "course_id": courseID}).
			ToSql()
	}
	return psql.Insert("student_course_records").
		Columns("user_id", "course_id", "status").
		Values(studentID, courseID, st.Code()).
		Suffix("ON CONFLICT (user_id, course_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()").
		ToSql()
}

// Close closes the pool.
func (p *PostgresRecords) Close() error {
	p.db.Close()
	return nil
}

var (
	_ CatalogSource = (*PostgresCatalog)(nil)
	_ RecordStore   = (*PostgresRecords)(nil)
)
