package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tonyadjei/devcamper-api/internal/query"
)

type Repository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (User, error)
	Update(ctx context.Context, id string, update bson.M) (User, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, opts query.Options) (query.Result, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, user User) error {
	_, err := r.col.InsertOne(ctx, user)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, err
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, err
}

func (r *MongoRepository) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (User, error) {
	var user User
	err := r.col.FindOne(ctx, bson.M{
		"resetPasswordToken":  hashedToken,
		"resetPasswordExpire": bson.M{"$gt": now},
	}).Decode(&user)
	return user, err
}

func (r *MongoRepository) Update(ctx context.Context, id string, update bson.M) (User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return User{}, err
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

func (r *MongoRepository) List(ctx context.Context, opts query.Options) (query.Result, error) {
	opts.Exclude(sensitiveFields...)
	return query.Run(ctx, r.col, opts)
}
