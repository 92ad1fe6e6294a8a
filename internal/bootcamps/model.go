package bootcamps

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Location is a stored GeoJSON point plus the address parts the geocoder
// resolved it from.
type Location struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty" json:"street,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

// Bootcamp is the primary directory entry. AverageCost and AverageRating are
// derived from courses and reviews and are absent until a child exists.
type Bootcamp struct {
	ID            string     `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string     `bson:"name" json:"name"`
	Slug          string     `bson:"slug" json:"slug"`
	Description   string     `bson:"description" json:"description"`
	Website       string     `bson:"website,omitempty" json:"website,omitempty"`
	Phone         string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string     `bson:"email,omitempty" json:"email,omitempty"`
	Address       string     `bson:"address,omitempty" json:"address,omitempty"`
	Location      *Location  `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []string   `bson:"careers" json:"careers"`
	AverageRating *float64   `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	AverageCost   *int       `bson:"averageCost,omitempty" json:"averageCost,omitempty"`
	Photo         string     `bson:"photo" json:"photo"`
	Housing       bool       `bson:"housing" json:"housing"`
	JobAssistance bool       `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool       `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGi      bool       `bson:"acceptGi" json:"acceptGi"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	User          string     `bson:"user" json:"user"`
}

// WithCourses is the single-bootcamp read model, carrying the reverse
// collection of courses alongside the document.
type WithCourses struct {
	Bootcamp `bson:",inline"`
	Courses  []bson.M `json:"courses"`
}

const DefaultPhoto = "no-photo.jpg"

type CreateRequest struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

type UpdateRequest struct {
	Name          *string  `json:"name" validate:"omitempty,max=50"`
	Description   *string  `json:"description" validate:"omitempty,max=500"`
	Website       *string  `json:"website" validate:"omitempty,url"`
	Phone         *string  `json:"phone" validate:"omitempty,max=20"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Address       *string  `json:"address" validate:"omitempty"`
	Careers       []string `json:"careers" validate:"omitempty,min=1,dive,career"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}
