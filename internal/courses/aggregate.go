package courses

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"
)

// averageCostUpdate builds the parent-bootcamp update for a recomputed
// tuition average. Costs are rounded up to the nearest multiple of 10.
// When no courses remain the derived field is removed rather than zeroed.
func averageCostUpdate(avg float64, found bool) bson.M {
	if !found {
		return bson.M{"$unset": bson.M{"averageCost": ""}}
	}
	return bson.M{"$set": bson.M{"averageCost": int(math.Ceil(avg/10) * 10)}}
}
