package reviews

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tonyadjei/devcamper-api/internal/query"
)

type Repository interface {
	Create(ctx context.Context, review Review) error
	GetByID(ctx context.Context, id string) (Review, error)
	Update(ctx context.Context, id string, update bson.M) (Review, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]Review, error)
	List(ctx context.Context, opts query.Options) (query.Result, error)
	RecomputeAverageRating(ctx context.Context, bootcampID string) error
}

type MongoRepository struct {
	col       *mongo.Collection
	bootcamps *mongo.Collection
}

func NewRepository(col, bootcamps *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col, bootcamps: bootcamps}
}

func (r *MongoRepository) Create(ctx context.Context, review Review) error {
	_, err := r.col.InsertOne(ctx, review)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Review, error) {
	var review Review
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	return review, err
}

func (r *MongoRepository) Update(ctx context.Context, id string, update bson.M) (Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Review
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Review{}, err
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

func (r *MongoRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]Review, error) {
	cursor, err := r.col.Find(ctx, bson.M{"bootcamp": bootcampID})
	if err != nil {
		return nil, err
	}
	reviews := make([]Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *MongoRepository) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return query.Run(ctx, r.col, opts, query.Join{
		Col:        r.bootcamps,
		LocalField: "bootcamp",
		Fields:     []string{"name", "description"},
	})
}

// RecomputeAverageRating re-derives the parent bootcamp's averageRating from
// its remaining reviews and writes it back.
func (r *MongoRepository) RecomputeAverageRating(ctx context.Context, bootcampID string) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": bootcampID}}},
		{{Key: "$group", Value: bson.M{"_id": "$bootcamp", "averageRating": bson.M{"$avg": "$rating"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var groups []struct {
		AverageRating float64 `bson:"averageRating"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return err
	}

	var avg float64
	if len(groups) > 0 {
		avg = groups[0].AverageRating
	}
	_, err = r.bootcamps.UpdateOne(ctx, bson.M{"_id": bootcampID}, averageRatingUpdate(avg, len(groups) > 0))
	return err
}
