package courses

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tonyadjei/devcamper-api/internal/query"
)

type Repository interface {
	Create(ctx context.Context, course Course) error
	GetByID(ctx context.Context, id string) (Course, error)
	Update(ctx context.Context, id string, update bson.M) (Course, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]Course, error)
	List(ctx context.Context, opts query.Options) (query.Result, error)
	RecomputeAverageCost(ctx context.Context, bootcampID string) error
}

type MongoRepository struct {
	col       *mongo.Collection
	bootcamps *mongo.Collection
}

func NewRepository(col, bootcamps *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col, bootcamps: bootcamps}
}

func (r *MongoRepository) Create(ctx context.Context, course Course) error {
	_, err := r.col.InsertOne(ctx, course)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Course, error) {
	var course Course
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	return course, err
}

func (r *MongoRepository) Update(ctx context.Context, id string, update bson.M) (Course, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Course
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Course{}, err
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

func (r *MongoRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]Course, error) {
	cursor, err := r.col.Find(ctx, bson.M{"bootcamp": bootcampID})
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *MongoRepository) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return query.Run(ctx, r.col, opts, query.Join{
		Col:        r.bootcamps,
		LocalField: "bootcamp",
		Fields:     []string{"name", "description"},
	})
}

// RecomputeAverageCost re-derives the parent bootcamp's averageCost from its
// remaining courses and writes it back.
func (r *MongoRepository) RecomputeAverageCost(ctx context.Context, bootcampID string) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": bootcampID}}},
		{{Key: "$group", Value: bson.M{"_id": "$bootcamp", "averageCost": bson.M{"$avg": "$tuition"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var groups []struct {
		AverageCost float64 `bson:"averageCost"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return err
	}

	var avg float64
	if len(groups) > 0 {
		avg = groups[0].AverageCost
	}
	_, err = r.bootcamps.UpdateOne(ctx, bson.M{"_id": bootcampID}, averageCostUpdate(avg, len(groups) > 0))
	return err
}
