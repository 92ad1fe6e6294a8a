// Package geocode resolves street addresses and postal codes to
// coordinates through the MapQuest geocoding API.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/tonyadjei/devcamper-api/internal/metrics"
)

var ErrNoResults = errors.New("geocoder returned no results")

type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Street           string  `json:"street,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	Country          string  `json:"country,omitempty"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

type MapQuestGeocoder struct {
	client *resty.Client
	apiKey string
}

func NewMapQuest(baseURL, apiKey string) *MapQuestGeocoder {
	return &MapQuestGeocoder{
		client: resty.New().SetBaseURL(baseURL),
		apiKey: apiKey,
	}
}

type mapquestResponse struct {
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (g *MapQuestGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	metrics.GeocodeLookups.Inc()

	var out mapquestResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetQueryParam("location", address).
		SetResult(&out).
		Get("/geocoding/v1/address")
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return Location{}, fmt.Errorf("geocode request failed: status=%d", resp.StatusCode())
	}
	if len(out.Results) == 0 || len(out.Results[0].Locations) == 0 {
		return Location{}, ErrNoResults
	}

	loc := out.Results[0].Locations[0]
	return Location{
		Lat:              loc.LatLng.Lat,
		Lng:              loc.LatLng.Lng,
		FormattedAddress: address,
		Street:           loc.Street,
		City:             loc.AdminArea5,
		State:            loc.AdminArea3,
		Zipcode:          loc.PostalCode,
		Country:          loc.AdminArea1,
	}, nil
}
