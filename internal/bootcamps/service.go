package bootcamps

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/geocode"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/query"
	"github.com/tonyadjei/devcamper-api/internal/users"
	"github.com/tonyadjei/devcamper-api/internal/utils"
)

var (
	ErrNotFound         = errors.New("bootcamp not found")
	ErrAlreadyPublished = errors.New("user has already published a bootcamp")
	ErrNotOwner         = errors.New("user is not the bootcamp owner")
)

type Service struct {
	repo Repository
	geo  geocode.Geocoder
	log  *slog.Logger
}

func NewService(repo Repository, geo geocode.Geocoder, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		geo:  geo,
		log:  log,
	}
}

func (s *Service) Create(ctx context.Context, owner middleware.Principal, req CreateRequest) (Bootcamp, error) {
	// Publishers may only publish one bootcamp; admins are unrestricted.
	if owner.Role != users.RoleAdmin {
		count, err := s.repo.CountByUser(ctx, owner.ID)
		if err != nil {
			return Bootcamp{}, err
		}
		if count > 0 {
			return Bootcamp{}, ErrAlreadyPublished
		}
	}

	bootcamp := Bootcamp{
		ID:            primitive.NewObjectID().Hex(),
		Name:          req.Name,
		Slug:          utils.Slugify(req.Name),
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Careers:       req.Careers,
		Photo:         DefaultPhoto,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
		CreatedAt:     time.Now().UTC(),
		User:          owner.ID,
	}
	bootcamp.Location = s.locate(ctx, req.Address)

	if err := s.repo.Create(ctx, bootcamp); err != nil {
		return Bootcamp{}, err
	}
	return bootcamp, nil
}

// locate resolves the address to a stored GeoJSON point. Geocoding is best
// effort on writes; a bootcamp without a location is simply invisible to
// radius search until updated.
func (s *Service) locate(ctx context.Context, address string) *Location {
	loc, err := s.geo.Geocode(ctx, address)
	if err != nil {
		s.log.Warn("bootcamps: geocode failed", slog.String("address", address), slog.String("error", err.Error()))
		return nil
	}
	return &Location{
		Type:             "Point",
		Coordinates:      []float64{loc.Lng, loc.Lat},
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}
}

func (s *Service) Get(ctx context.Context, id string) (WithCourses, error) {
	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return WithCourses{}, ErrNotFound
		}
		return WithCourses{}, err
	}
	courses, err := s.repo.CoursesFor(ctx, id)
	if err != nil {
		return WithCourses{}, err
	}
	return WithCourses{Bootcamp: bootcamp, Courses: courses}, nil
}

func (s *Service) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return s.repo.List(ctx, opts)
}

// OwnedBootcamp loads the bootcamp and enforces write access: the owner or
// an admin.
func (s *Service) OwnedBootcamp(ctx context.Context, principal middleware.Principal, id string) (Bootcamp, error) {
	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Bootcamp{}, ErrNotFound
		}
		return Bootcamp{}, err
	}
	if bootcamp.User != principal.ID && principal.Role != users.RoleAdmin {
		return Bootcamp{}, ErrNotOwner
	}
	return bootcamp, nil
}

func (s *Service) Update(ctx context.Context, principal middleware.Principal, id string, req UpdateRequest) (Bootcamp, error) {
	if _, err := s.OwnedBootcamp(ctx, principal, id); err != nil {
		return Bootcamp{}, err
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
		set["slug"] = utils.Slugify(*req.Name)
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Address != nil {
		set["address"] = *req.Address
		if loc := s.locate(ctx, *req.Address); loc != nil {
			set["location"] = loc
		}
	}
	if req.Careers != nil {
		set["careers"] = req.Careers
	}
	if req.Housing != nil {
		set["housing"] = *req.Housing
	}
	if req.JobAssistance != nil {
		set["jobAssistance"] = *req.JobAssistance
	}
	if req.JobGuarantee != nil {
		set["jobGuarantee"] = *req.JobGuarantee
	}
	if req.AcceptGi != nil {
		set["acceptGi"] = *req.AcceptGi
	}
	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Bootcamp{}, ErrNotFound
		}
		return Bootcamp{}, err
	}
	return updated, nil
}

// Delete removes the bootcamp and cascades to its courses and reviews.
func (s *Service) Delete(ctx context.Context, principal middleware.Principal, id string) error {
	if _, err := s.OwnedBootcamp(ctx, principal, id); err != nil {
		return err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	courses, reviews, err := s.repo.DeleteChildren(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("bootcamps: cascade delete",
		slog.String("bootcamp_id", id),
		slog.Int64("courses", courses),
		slog.Int64("reviews", reviews),
	)
	return nil
}

// SetPhoto records an already-stored photo filename on the bootcamp.
func (s *Service) SetPhoto(ctx context.Context, id, filename string) (Bootcamp, error) {
	updated, err := s.repo.Update(ctx, id, bson.M{"$set": bson.M{"photo": filename}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Bootcamp{}, ErrNotFound
		}
		return Bootcamp{}, err
	}
	return updated, nil
}

// WithinRadius returns the bootcamps whose location falls inside the
// spherical cap of the given radius (miles) around the zipcode.
func (s *Service) WithinRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]Bootcamp, error) {
	loc, err := s.geo.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, geocode.CenterSphere(loc.Lat, loc.Lng, distanceMiles))
}
