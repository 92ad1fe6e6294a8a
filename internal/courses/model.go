package courses

import "time"

// Course belongs to a bootcamp. Weeks is free-form text ("8", "10 to 12"),
// so it stays a string.
type Course struct {
	ID                   string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Title                string    `bson:"title" json:"title"`
	Description          string    `bson:"description" json:"description"`
	Weeks                string    `bson:"weeks" json:"weeks"`
	Tuition              float64   `bson:"tuition" json:"tuition"`
	MinimumSkill         string    `bson:"minimumSkill" json:"minimumSkill"`
	ScholarshipAvailable bool      `bson:"scholarshipAvailable" json:"scholarshipAvailable"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
	Bootcamp             string    `bson:"bootcamp" json:"bootcamp"`
	User                 string    `bson:"user" json:"user"`
}

type CreateRequest struct {
	Title                string  `json:"title" validate:"required"`
	Description          string  `json:"description" validate:"required"`
	Weeks                string  `json:"weeks" validate:"required"`
	Tuition              float64 `json:"tuition" validate:"required,gt=0"`
	MinimumSkill         string  `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

type UpdateRequest struct {
	Title                *string  `json:"title" validate:"omitempty,min=1"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *string  `json:"weeks" validate:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gt=0"`
	MinimumSkill         *string  `json:"minimumSkill" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}
