package storage

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/status"
)

// Collection names used by the MongoDB backends.
const (
	CollectionCourses       = "courses"
	CollectionPrerequisites = "prerequisites"
	CollectionDepartments   = "departments"
	CollectionRecords       = "records"
)

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "connect to mongodb")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(fmt.Errorf("%w: mongodb: %v", cache.ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	return client, nil
}

// MongoCatalog reads the catalog from the courses, prerequisites and
// departments collections. Course documents use the [catalog.RawCourse]
// field names.
type MongoCatalog struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoCatalog creates a catalog source over database.
func NewMongoCatalog(client *mongo.Client, database string) *MongoCatalog {
	return &MongoCatalog{client: client, db: client.Database(database)}
}

// Name returns "mongo".
func (m *MongoCatalog) Name() string { return "mongo" }

// Close disconnects the client.
func (m *MongoCatalog) Close() error { return disconnect(m.client) }

// LoadCatalog reads all three collections.
func (m *MongoCatalog) LoadCatalog(ctx context.Context) (*Catalog, error) {
	var c Catalog
	if err := findAll(ctx, m.db.Collection(CollectionDepartments), bson.D{{Key: "dept_id", Value: 1}}, &c.Departments); err != nil {
		return nil, err
	}
	if err := findAll(ctx, m.db.Collection(CollectionCourses), bson.D{{Key: "course_id", Value: 1}}, &c.Courses); err != nil {
		return nil, err
	}
	if err := findAll(ctx, m.db.Collection(CollectionPrerequisites), nil, &c.Prerequisites); err != nil {
		return nil, err
	}
	return &c, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, sort bson.D, out any) error {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "query %s", coll.Name())
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "decode %s", coll.Name())
	}
	return nil
}

// recordDoc is one document of the records collection.
type recordDoc struct {
	StudentID string `bson:"student_id"`
	CourseID  int    `bson:"course_id"`
	Status    string `bson:"status"`
}

// MongoRecords keeps one document per (student, course) in the records
// collection.
type MongoRecords struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRecords creates a record store over database.
func NewMongoRecords(client *mongo.Client, database string) *MongoRecords {
	return &MongoRecords{client: client, coll: client.Database(database).Collection(CollectionRecords)}
}

// EnsureIndexes creates the unique (student_id, course_id) index.
func (m *MongoRecords) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create records index")
	}
	return nil
}

// Records returns the statuses of one student.
func (m *MongoRecords) Records(ctx context.Context, studentID string) (status.Map, error) {
	cur, err := m.coll.Find(ctx, bson.D{{Key: "student_id", Value: studentID}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query records")
	}
	var docs []recordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode records")
	}

	codes := make(map[int]string, len(docs))
	for _, d := range docs {
		codes[d.CourseID] = d.Status
	}
	out, err := status.ParseCodes(codes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "invalid record")
	}
	return out, nil
}

// PutRecord upserts one document, or deletes it for Unset.
func (m *MongoRecords) PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error {
	filter := bson.D{{Key: "student_id", Value: studentID}, {Key: "course_id", Value: courseID}}

	var err error
	if st == status.Unset {
		_, err = m.coll.DeleteOne(ctx, filter)
	} else {
		update := bson.D{{Key: "$set", Value: recordDoc{StudentID: studentID, CourseID: courseID, Status: st.Code()}}}
		_, err = m.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write record")
	}
	return nil
}

// Close disconnects the client.
func (m *MongoRecords) Close() error { return disconnect(m.client) }

// disconnect tolerates clients shared between a catalog and a record store.
func disconnect(client *mongo.Client) error {
	err := client.Disconnect(context.Background())
	if stderrors.Is(err, mongo.ErrClientDisconnected) {
		return nil
	}
	return err
}

var (
	_ CatalogSource = (*MongoCatalog)(nil)
	_ RecordStore   = (*MongoRecords)(nil)
)
