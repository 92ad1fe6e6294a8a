package bootcamps

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tonyadjei/devcamper-api/internal/query"
)

type Repository interface {
	Create(ctx context.Context, bootcamp Bootcamp) error
	GetByID(ctx context.Context, id string) (Bootcamp, error)
	CoursesFor(ctx context.Context, bootcampID string) ([]bson.M, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, id string, update bson.M) (Bootcamp, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteChildren(ctx context.Context, bootcampID string) (courses, reviews int64, err error)
	Find(ctx context.Context, filter bson.M) ([]Bootcamp, error)
	List(ctx context.Context, opts query.Options) (query.Result, error)
}

// MongoRepository also holds the courses and reviews collections: the list
// join, the single-document course expansion and the cascade delete all cross
// into the child collections.
type MongoRepository struct {
	col     *mongo.Collection
	courses *mongo.Collection
	reviews *mongo.Collection
}

func NewRepository(col, courses, reviews *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col, courses: courses, reviews: reviews}
}

func (r *MongoRepository) Create(ctx context.Context, bootcamp Bootcamp) error {
	_, err := r.col.InsertOne(ctx, bootcamp)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Bootcamp, error) {
	var bootcamp Bootcamp
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&bootcamp)
	return bootcamp, err
}

func (r *MongoRepository) CoursesFor(ctx context.Context, bootcampID string) ([]bson.M, error) {
	cursor, err := r.courses.Find(ctx, bson.M{"bootcamp": bootcampID})
	if err != nil {
		return nil, err
	}
	courses := make([]bson.M, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *MongoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user": userID})
}

func (r *MongoRepository) Update(ctx context.Context, id string, update bson.M) (Bootcamp, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Bootcamp
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Bootcamp{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) DeleteChildren(ctx context.Context, bootcampID string) (int64, int64, error) {
	filter := bson.M{"bootcamp": bootcampID}

	coursesRes, err := r.courses.DeleteMany(ctx, filter)
	if err != nil {
		return 0, 0, err
	}
	reviewsRes, err := r.reviews.DeleteMany(ctx, filter)
	if err != nil {
		return coursesRes.DeletedCount, 0, err
	}
	return coursesRes.DeletedCount, reviewsRes.DeletedCount, nil
}

func (r *MongoRepository) Find(ctx context.Context, filter bson.M) ([]Bootcamp, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	bootcamps := make([]Bootcamp, 0)
	if err := cursor.All(ctx, &bootcamps); err != nil {
		return nil, err
	}
	return bootcamps, nil
}

func (r *MongoRepository) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return query.Run(ctx, r.col, opts, query.Join{
		Col:          r.courses,
		ForeignField: "bootcamp",
		As:           "courses",
	})
}
