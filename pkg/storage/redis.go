package storage

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/status"
)

// DefaultRedisKeyPrefix prefixes the per-student record hashes.
const DefaultRedisKeyPrefix = "coursemap:records:"

// RedisRecords keeps each student's records in a hash whose fields are
// course ids and whose values are status codes.
type RedisRecords struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRecords wraps a connected client. An empty prefix uses
// [DefaultRedisKeyPrefix].
func NewRedisRecords(client redis.UniversalClient, prefix string) *RedisRecords {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisRecords{client: client, prefix: prefix}
}

// Key returns the hash key of a student.
func (r *RedisRecords) Key(studentID string) string { return r.prefix + studentID }

// Records reads the student's hash.
func (r *RedisRecords) Records(ctx context.Context, studentID string) (status.Map, error) {
	codes, err := r.client.HGetAll(ctx, r.Key(studentID)).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read records from redis")
	}
	return decodeCodes(codes)
}

// PutRecord sets or deletes one hash field.
func (r *RedisRecords) PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error {
	key, field := r.Key(studentID), strconv.Itoa(courseID)
	var err error
	if st == status.Unset {
		err = r.client.HDel(ctx, key, field).Err()
	} else {
		err = r.client.HSet(ctx, key, field, st.Code()).Err()
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write record to redis")
	}
	return nil
}

// Close closes the client.
func (r *RedisRecords) Close() error { return r.client.Close() }

var _ RecordStore = (*RedisRecords)(nil)
