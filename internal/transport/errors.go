package transport

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// MapStoreError translates driver-level failures into the HTTP error taxonomy.
// Anything unrecognized defaults to a generic 500.
func MapStoreError(err error) (int, string) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound, "Resource not found"
	case mongo.IsDuplicateKeyError(err):
		return http.StatusBadRequest, "Duplicate field value entered"
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}

// WriteStoreError maps err through MapStoreError and writes the envelope.
func WriteStoreError(w http.ResponseWriter, err error) {
	status, message := MapStoreError(err)
	WriteError(w, status, message, nil)
}
