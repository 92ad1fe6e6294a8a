package reviews

import "time"

// Review is a user's rating of a bootcamp. The (bootcamp, user) pair is
// unique: one review per user per bootcamp, enforced by index.
type Review struct {
	ID        string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Title     string    `bson:"title" json:"title"`
	Text      string    `bson:"text" json:"text"`
	Rating    float64   `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	Bootcamp  string    `bson:"bootcamp" json:"bootcamp"`
	User      string    `bson:"user" json:"user"`
}

type CreateRequest struct {
	Title  string  `json:"title" validate:"required,max=100"`
	Text   string  `json:"text" validate:"required"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=10"`
}

type UpdateRequest struct {
	Title  *string  `json:"title" validate:"omitempty,max=100"`
	Text   *string  `json:"text" validate:"omitempty,min=1"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=10"`
}
