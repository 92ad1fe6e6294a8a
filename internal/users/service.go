package users

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/query"
)

// Service is the admin-facing user CRUD, distinct from AuthService which
// handles the caller's own credential lifecycle.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return s.repo.List(ctx, opts)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (User, error) {
	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Role != "" {
		set["role"] = req.Role
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	user, err := s.repo.Update(ctx, id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
