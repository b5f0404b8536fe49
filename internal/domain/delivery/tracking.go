// Package delivery simulates courier progress for paid orders. Nothing is
// persisted: every call derives the position from the order timestamps.
package delivery

import (
	"math"
	"time"
)

const (
	earthRadiusMeters = 6371000.0
	courierSpeedMPS   = 11.1

	basePrepSeconds    = 60
	prepStepPerLevel   = 10
	minimumPrepSeconds = 20
)

// Status labels reported by Track
const (
	StatusPreparing = "preparing"
	StatusEnRoute   = "en route"
	StatusDelivered = "delivered"
)

// Point is a WGS84 coordinate
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Origin is the dispatch point every courier leaves from
var Origin = Point{Lat: 4.653, Lng: -74.083}

// Tracking is the simulated state of a delivery
type Tracking struct {
	Status      string
	Courier     Point
	Origin      Point
	Destination Point
	ETASeconds  int
	PrepSeconds int
	UserLevel   int
}

// PrepSeconds shortens preparation by 10s per level above 1, with a 20s floor
func PrepSeconds(userLevel int) int {
	prep := basePrepSeconds - prepStepPerLevel*(userLevel-1)
	if prep < minimumPrepSeconds {
		return minimumPrepSeconds
	}
	return prep
}

// Track computes where the courier is at now for an order created at
// createdAt and shipped to dest.
func Track(createdAt time.Time, dest Point, userLevel int, now time.Time) Tracking {
	prep := PrepSeconds(userLevel)
	t := Tracking{
		Origin:      Origin,
		Destination: dest,
		PrepSeconds: prep,
		UserLevel:   userLevel,
	}

	elapsed := now.Sub(createdAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if elapsed < float64(prep) {
		t.Status = StatusPreparing
		t.Courier = Origin
		t.ETASeconds = int(float64(prep) - elapsed)
		return t
	}

	travel := Haversine(Origin, dest) / courierSpeedMPS
	onRoad := elapsed - float64(prep)
	if onRoad >= travel {
		t.Status = StatusDelivered
		t.Courier = dest
		t.ETASeconds = 0
		return t
	}

	frac := onRoad / travel
	t.Status = StatusEnRoute
	t.Courier = Point{
		Lat: Origin.Lat + (dest.Lat-Origin.Lat)*frac,
		Lng: Origin.Lng + (dest.Lng-Origin.Lng)*frac,
	}
	t.ETASeconds = int(travel - onRoad)
	return t
}

// Haversine returns the great-circle distance between a and b in meters
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
