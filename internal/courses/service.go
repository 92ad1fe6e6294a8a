package courses

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
	ErrNotFound         = errors.New("course not found")
	ErrBootcampNotFound = errors.New("bootcamp not found")
	ErrNotOwner         = errors.New("user is not the course owner")
)

// BootcampSource is the slice of the bootcamp repository needed here: course
// writes check the parent's existence and owner.
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

func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]Course, error) {
	return s.repo.ListByBootcamp(ctx, bootcampID)
}

func (s *Service) Get(ctx context.Context, id string) (Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return course, nil
}

// Create adds a course under the bootcamp. Only the bootcamp owner or an
// admin may add courses to it.
func (s *Service) Create(ctx context.Context, principal middleware.Principal, bootcampID string, req CreateRequest) (Course, error) {
	parent, err := s.bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Course{}, ErrBootcampNotFound
		}
		return Course{}, err
	}
	if parent.User != principal.ID && principal.Role != users.RoleAdmin {
		return Course{}, ErrNotOwner
	}

	course := Course{
		ID:                   primitive.NewObjectID().Hex(),
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		CreatedAt:            time.Now().UTC(),
		Bootcamp:             bootcampID,
		User:                 principal.ID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return Course{}, err
	}

	s.recompute(ctx, bootcampID)
	return course, nil
}

func (s *Service) Update(ctx context.Context, principal middleware.Principal, id string, req UpdateRequest) (Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if course.User != principal.ID && principal.Role != users.RoleAdmin {
		return Course{}, ErrNotOwner
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Weeks != nil {
		set["weeks"] = *req.Weeks
	}
	if req.Tuition != nil {
		set["tuition"] = *req.Tuition
	}
	if req.MinimumSkill != nil {
		set["minimumSkill"] = *req.MinimumSkill
	}
	if req.ScholarshipAvailable != nil {
		set["scholarshipAvailable"] = *req.ScholarshipAvailable
	}
	if len(set) == 0 {
		return course, nil
	}

	updated, err := s.repo.Update(ctx, id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, principal middleware.Principal, id string) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if course.User != principal.ID && principal.Role != users.RoleAdmin {
		return ErrNotOwner
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	s.recompute(ctx, course.Bootcamp)
	return nil
}

// recompute refreshes the parent's averageCost. A failure here must not fail
// the write that triggered it; the aggregate catches up on the next change.
func (s *Service) recompute(ctx context.Context, bootcampID string) {
	metrics.AggregateRecomputes.WithLabelValues("averageCost").Inc()
	if err := s.repo.RecomputeAverageCost(ctx, bootcampID); err != nil {
		s.log.Error("courses: average cost recompute failed",
			slog.String("bootcamp_id", bootcampID),
			slog.String("error", err.Error()),
		)
	}
}
