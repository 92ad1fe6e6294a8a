package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/bootcamps"
	"github.com/tonyadjei/devcamper-api/internal/metrics"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/query"
	"github.com/tonyadjei/devcamper-api/internal/users"
)

var (
	ErrNotFound         = errors.New("review not found")
	ErrBootcampNotFound = errors.New("bootcamp not found")
	ErrNotOwner         = errors.New("user is not the review owner")
)

type BootcampSource interface {
	GetByID(ctx context.Context, id string) (bootcamps.Bootcamp, error)
}

type Service struct {
	repo      Repository
	bootcamps BootcampSource
	log       *slog.Logger
}

func NewService(repo Repository, bootcamps BootcampSource, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		bootcamps: bootcamps,
		log:       log,
	}
}

func (s *Service) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return s.repo.List(ctx, opts)
}

func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]Review, error) {
	return s.repo.ListByBootcamp(ctx, bootcampID)
}

func (s *Service) Get(ctx context.Context, id string) (Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return review, nil
}

// Create adds a review under the bootcamp. A second review for the same
// (bootcamp, user) pair fails on the unique index and surfaces as a
// duplicate-value error.
func (s *Service) Create(ctx context.Context, principal middleware.Principal, bootcampID string, req CreateRequest) (Review, error) {
	if _, err := s.bootcamps.GetByID(ctx, bootcampID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Review{}, ErrBootcampNotFound
		}
		return Review{}, err
	}

	review := Review{
		ID:        primitive.NewObjectID().Hex(),
		Title:     req.Title,
		Text:      req.Text,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
		Bootcamp:  bootcampID,
		User:      principal.ID,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return Review{}, err
	}

	s.recompute(ctx, bootcampID)
	return review, nil
}

func (s *Service) Update(ctx context.Context, principal middleware.Principal, id string, req UpdateRequest) (Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if review.User != principal.ID && principal.Role != users.RoleAdmin {
		return Review{}, ErrNotOwner
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Text != nil {
		set["text"] = *req.Text
	}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if len(set) == 0 {
		return review, nil
	}

	updated, err := s.repo.Update(ctx, id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, principal middleware.Principal, id string) error {
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if review.User != principal.ID && principal.Role != users.RoleAdmin {
		return ErrNotOwner
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	s.recompute(ctx, review.Bootcamp)
	return nil
}

func (s *Service) recompute(ctx context.Context, bootcampID string) {
	metrics.AggregateRecomputes.WithLabelValues("averageRating").Inc()
	if err := s.repo.RecomputeAverageRating(ctx, bootcampID); err != nil {
		s.log.Error("reviews: average rating recompute failed",
			slog.String("bootcamp_id", bootcampID),
			slog.String("error", err.Error()),
		)
	}
}
