package reviews

import "go.mongodb.org/mongo-driver/bson"

// averageRatingUpdate builds the parent-bootcamp update for a recomputed
// rating average. Ratings keep their precision; when the last review goes,
// the derived field goes with it.
func averageRatingUpdate(avg float64, found bool) bson.M {
	if !found {
		return bson.M{"$unset": bson.M{"averageRating": ""}}
	}
	return bson.M{"$set": bson.M{"averageRating": avg}}
}
