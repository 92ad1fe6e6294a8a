package courses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/bootcamps"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/query"
)

func TestAverageCostUpdate(t *testing.T) {
	tests := []struct {
		name  string
		avg   float64
		found bool
		want  bson.M
	}{
		{"rounds up to next ten", 9001, true, bson.M{"$set": bson.M{"averageCost": 9010}}},
		{"exact multiple stays", 12000, true, bson.M{"$set": bson.M{"averageCost": 12000}}},
		{"fractional average", 6333.34, true, bson.M{"$set": bson.M{"averageCost": 6340}}},
		{"no courses clears the field", 0, false, bson.M{"$unset": bson.M{"averageCost": ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := averageCostUpdate(tt.avg, tt.found); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("averageCostUpdate(%v, %v) = %v, want %v", tt.avg, tt.found, got, tt.want)
			}
		})
	}
}

type fakeRepo struct {
	courses      map[string]*Course
	recomputed   []string
	recomputeErr error
}

func newFakeRepo(seed ...Course) *fakeRepo {
	repo := &fakeRepo{courses: make(map[string]*Course)}
	for i := range seed {
		c := seed[i]
		repo.courses[c.ID] = &c
	}
	return repo
}

func (f *fakeRepo) Create(ctx context.Context, course Course) error {
	f.courses[course.ID] = &course
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Course, error) {
	if c, ok := f.courses[id]; ok {
		return *c, nil
	}
	return Course{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) Update(ctx context.Context, id string, update bson.M) (Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return Course{}, mongo.ErrNoDocuments
	}
	if set, ok := update["$set"].(bson.M); ok {
		if v, ok := set["title"].(string); ok {
			c.Title = v
		}
		if v, ok := set["tuition"].(float64); ok {
			c.Tuition = v
		}
	}
	return *c, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.courses[id]; !ok {
		return false, nil
	}
	delete(f.courses, id)
	return true, nil
}

func (f *fakeRepo) ListByBootcamp(ctx context.Context, bootcampID string) ([]Course, error) {
	out := make([]Course, 0)
	for _, c := range f.courses {
		if c.Bootcamp == bootcampID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return query.Result{Data: []bson.M{}}, nil
}

func (f *fakeRepo) RecomputeAverageCost(ctx context.Context, bootcampID string) error {
	f.recomputed = append(f.recomputed, bootcampID)
	return f.recomputeErr
}

type fakeBootcamps struct {
	owners map[string]string // bootcamp id -> owner id
}

func (f *fakeBootcamps) GetByID(ctx context.Context, id string) (bootcamps.Bootcamp, error) {
	owner, ok := f.owners[id]
	if !ok {
		return bootcamps.Bootcamp{}, mongo.ErrNoDocuments
	}
	return bootcamps.Bootcamp{ID: id, User: owner}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo *fakeRepo, parents *fakeBootcamps) *Service {
	return NewService(repo, parents, discardLogger())
}

func publisher(id string) middleware.Principal {
	return middleware.Principal{ID: id, Role: "publisher"}
}

func admin(id string) middleware.Principal {
	return middleware.Principal{ID: id, Role: "admin"}
}

var createReq = CreateRequest{
	Title:        "Front End Web Development",
	Description:  "This course will provide you with all of the essentials",
	Weeks:        "8",
	Tuition:      8000,
	MinimumSkill: "beginner",
}

func TestCreateRecomputesParentAverage(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}})

	course, err := service.Create(context.Background(), publisher("user-1"), "bc-1", createReq)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if course.Bootcamp != "bc-1" || course.User != "user-1" {
		t.Fatalf("course not bound to bootcamp and owner: %+v", course)
	}
	if len(repo.recomputed) != 1 || repo.recomputed[0] != "bc-1" {
		t.Fatalf("expected one recompute for bc-1, got %v", repo.recomputed)
	}
}

func TestCreateRecomputeFailureDoesNotFailCreate(t *testing.T) {
	repo := newFakeRepo()
	repo.recomputeErr = errors.New("aggregation broke")
	service := newService(repo, &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}})

	if _, err := service.Create(context.Background(), publisher("user-1"), "bc-1", createReq); err != nil {
		t.Fatalf("create must survive a recompute failure, got %v", err)
	}
	if len(repo.courses) != 1 {
		t.Fatalf("course not stored")
	}
}

func TestCreateUnknownBootcamp(t *testing.T) {
	service := newService(newFakeRepo(), &fakeBootcamps{owners: map[string]string{}})

	if _, err := service.Create(context.Background(), publisher("user-1"), "missing", createReq); err != ErrBootcampNotFound {
		t.Fatalf("expected ErrBootcampNotFound, got %v", err)
	}
}

func TestCreateRequiresBootcampOwnership(t *testing.T) {
	parents := &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}}
	service := newService(newFakeRepo(), parents)

	if _, err := service.Create(context.Background(), publisher("intruder"), "bc-1", createReq); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := service.Create(context.Background(), admin("someone-else"), "bc-1", createReq); err != nil {
		t.Fatalf("admin create error: %v", err)
	}
}

func TestDeleteRecomputesParentAverage(t *testing.T) {
	repo := newFakeRepo(Course{ID: "c-1", Bootcamp: "bc-1", User: "user-1", Tuition: 8000})
	service := newService(repo, &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}})

	if err := service.Delete(context.Background(), publisher("user-1"), "c-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(repo.recomputed) != 1 || repo.recomputed[0] != "bc-1" {
		t.Fatalf("expected recompute for bc-1, got %v", repo.recomputed)
	}
}

func TestUpdateDoesNotRecompute(t *testing.T) {
	repo := newFakeRepo(Course{ID: "c-1", Bootcamp: "bc-1", User: "user-1", Tuition: 8000})
	service := newService(repo, &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}})
	tuition := 12000.0

	updated, err := service.Update(context.Background(), publisher("user-1"), "c-1", UpdateRequest{Tuition: &tuition})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Tuition != 12000 {
		t.Fatalf("tuition not updated: %v", updated.Tuition)
	}
	if len(repo.recomputed) != 0 {
		t.Fatalf("updates must not trigger a recompute, got %v", repo.recomputed)
	}
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	repo := newFakeRepo(Course{ID: "c-1", Bootcamp: "bc-1", User: "user-1"})
	service := newService(repo, &fakeBootcamps{owners: map[string]string{"bc-1": "user-1"}})
	title := "Renamed"

	if _, err := service.Update(context.Background(), publisher("intruder"), "c-1", UpdateRequest{Title: &title}); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if err := service.Delete(context.Background(), publisher("intruder"), "c-1"); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
	if err := service.Delete(context.Background(), admin("someone-else"), "c-1"); err != nil {
		t.Fatalf("admin delete error: %v", err)
	}
}
