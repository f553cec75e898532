package review

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/rtree"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// DefaultRadiusKm is the lookup radius when the caller passes zero.
const DefaultRadiusKm = 0.1

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Review is a location-tagged rating. Held in process memory for the app
// session only; lost on restart by design.
type Review struct {
	ID        string   `json:"id"`
	Location  Location `json:"location"`
	Rating    int      `json:"rating"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
}

// Store keeps the session's reviews with a spatial index over their
// locations so nearby lookups don't scan everything.
type Store struct {
	mu      sync.Mutex
	reviews []Review
	index   rtree.RTreeG[int]
}

func NewStore() *Store {
	return &Store{}
}

// Add records a review. Zero or out-of-range ratings are rejected, matching
// the submit button's rule.
func (s *Store) Add(location Location, rating int, text string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}

	review := Review{
		ID:        uuid.NewString(),
		Location:  location,
		Rating:    rating,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	point := [2]float64{location.Longitude, location.Latitude}
	s.index.Insert(point, point, len(s.reviews))
	s.reviews = append(s.reviews, review)
	return review, nil
}

// ByLocation returns the reviews within radiusKm of the given location.
func (s *Store) ByLocation(location Location, radiusKm float64) []Review {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	// degree-padded candidate box; haversine does the exact cut
	latPad := radiusKm / 111.0
	cosLat := math.Cos(location.Latitude * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngPad := radiusKm / (111.0 * cosLat)

	min := [2]float64{location.Longitude - lngPad, location.Latitude - latPad}
	max := [2]float64{location.Longitude + lngPad, location.Latitude + latPad}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Review
	s.index.Search(min, max, func(_, _ [2]float64, i int) bool {
		review := s.reviews[i]
		if haversineKm(location, review.Location) <= radiusKm {
			out = append(out, review)
		}
		return true
	})
	return out
}

// All returns a copy of every review in submission order.
func (s *Store) All() []Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Review, len(s.reviews))
	copy(out, s.reviews)
	return out
}

const earthRadiusKm = 6371

func haversineKm(a, b Location) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}
