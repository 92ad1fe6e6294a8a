package geocode

import "go.mongodb.org/mongo-driver/bson"

// EarthRadiusMiles is Earth's mean radius, used to convert a distance in
// miles to radians for spherical-cap queries.
const EarthRadiusMiles = 3963.2

// CenterSphere builds a geo filter matching stored points within
// distanceMiles of (lat, lng).
func CenterSphere(lat, lng, distanceMiles float64) bson.M {
	radians := distanceMiles / EarthRadiusMiles
	return bson.M{
		"location.coordinates": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radians},
			},
		},
	}
}
