package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCenterSphere(t *testing.T) {
	filter := CenterSphere(40.75, -73.99, 5)

	within, ok := filter["location.coordinates"].(bson.M)
	if !ok {
		t.Fatalf("expected location filter, got %#v", filter)
	}
	geo, ok := within["$geoWithin"].(bson.M)
	if !ok {
		t.Fatalf("expected $geoWithin, got %#v", within)
	}
	sphere, ok := geo["$centerSphere"].(bson.A)
	if !ok || len(sphere) != 2 {
		t.Fatalf("expected [center, radians], got %#v", geo["$centerSphere"])
	}

	center := sphere[0].(bson.A)
	if center[0] != -73.99 || center[1] != 40.75 {
		t.Fatalf("center must be [lng, lat], got %#v", center)
	}

	radians := sphere[1].(float64)
	want := 5 / EarthRadiusMiles
	if radians != want {
		t.Fatalf("radians = %v, want %v", radians, want)
	}
}

func TestMapQuestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocoding/v1/address" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatalf("missing api key")
		}
		if r.URL.Query().Get("location") != "10001" {
			t.Fatalf("unexpected location: %s", r.URL.Query().Get("location"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"locations":[{"street":"","adminArea5":"New York","adminArea3":"NY","adminArea1":"US","postalCode":"10001","latLng":{"lat":40.748,"lng":-73.996}}]}]}`))
	}))
	defer srv.Close()

	g := NewMapQuest(srv.URL, "test-key")
	loc, err := g.Geocode(context.Background(), "10001")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if loc.Lat != 40.748 || loc.Lng != -73.996 {
		t.Fatalf("unexpected coordinates: %+v", loc)
	}
	if loc.City != "New York" || loc.State != "NY" {
		t.Fatalf("unexpected components: %+v", loc)
	}
}

func TestMapQuestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	g := NewMapQuest(srv.URL, "test-key")
	if _, err := g.Geocode(context.Background(), "00000"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type countingGeocoder struct {
	calls int
	loc   Location
}

func (c *countingGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	c.calls++
	return c.loc, nil
}

func TestCachedGeocoderMemoizes(t *testing.T) {
	upstream := &countingGeocoder{loc: Location{Lat: 1, Lng: 2, Zipcode: "10001"}}
	g := NewCached(upstream, &memCache{data: make(map[string][]byte)})

	for i := 0; i < 3; i++ {
		loc, err := g.Geocode(context.Background(), "10001")
		if err != nil {
			t.Fatalf("Geocode error: %v", err)
		}
		if loc.Lat != 1 || loc.Lng != 2 {
			t.Fatalf("unexpected location: %+v", loc)
		}
	}

	if upstream.calls != 1 {
		t.Fatalf("expected one upstream lookup, got %d", upstream.calls)
	}
}
