package selection

import (
	"context"
	"log"
	"sync"

	"github.com/GeoFix/GeoFix-Backend/internal/mapview"
	"github.com/paulmach/orb"
)

// SelectedFeature is the display shape the metadata viewer expects.
type SelectedFeature struct {
	FullPostal string  `json:"fullPostal"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	StreetName string  `json:"streetName"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// BoundsClient is the slice of the Feature API the selector needs.
type BoundsClient interface {
	FeaturesInBounds(ctx context.Context, north, south, east, west float64) ([]mapview.Feature, error)
}

// Selector tracks a rectangle drag on the map and swaps the selected-feature
// set for whatever the Feature API returns for the final rectangle. Map
// panning is disabled for the duration of the drag.
type Selector struct {
	Client     BoundsClient
	SetPanning func(enabled bool)

	mu       sync.Mutex
	active   bool
	anchor   orb.Point
	current  orb.Bound
	selected []SelectedFeature
	errMsg   string
}

func NewSelector(client BoundsClient, setPanning func(bool)) *Selector {
	return &Selector{Client: client, SetPanning: setPanning}
}

// Begin captures the drag anchor and disables panning.
func (s *Selector) Begin(anchor orb.Point) {
	s.mu.Lock()
	s.active = true
	s.anchor = anchor
	s.current = rectangle(anchor, anchor)
	s.mu.Unlock()

	if s.SetPanning != nil {
		s.SetPanning(false)
	}
}

// Move recomputes the live rectangle from anchor to the current pointer.
func (s *Selector) Move(pointer orb.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.current = rectangle(s.anchor, pointer)
}

// End finishes the drag: re-enables panning, queries the final rectangle and
// replaces the selection with the response. On failure the previous
// selection is cleared and the error message recorded.
func (s *Selector) End(ctx context.Context, pointer orb.Point) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.current = rectangle(s.anchor, pointer)
	rect := s.current
	s.mu.Unlock()

	if s.SetPanning != nil {
		s.SetPanning(true)
	}

	north, south := rect.Max.Lat(), rect.Min.Lat()
	east, west := rect.Max.Lon(), rect.Min.Lon()

	features, err := s.Client.FeaturesInBounds(ctx, north, south, east, west)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Println("Error fetching selected features:", err)
		s.selected = nil
		s.errMsg = "Failed to load features for selection"
		return err
	}

	s.selected = transform(features)
	s.errMsg = ""
	return nil
}

// Active reports whether a drag is in progress.
func (s *Selector) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Current returns the live rectangle.
func (s *Selector) Current() orb.Bound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Selection returns a copy of the selected-feature set.
func (s *Selector) Selection() []SelectedFeature {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SelectedFeature, len(s.selected))
	copy(out, s.selected)
	return out
}

// Err returns the last error message, empty when the last query succeeded.
func (s *Selector) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// rectangle builds a bound from two corners in any drag direction.
func rectangle(a, b orb.Point) orb.Bound {
	bound := orb.Bound{Min: a, Max: a}
	return bound.Extend(b)
}

func transform(features []mapview.Feature) []SelectedFeature {
	out := make([]SelectedFeature, 0, len(features))
	for _, f := range features {
		selected := SelectedFeature{
			FullPostal: f.FullPostal,
			City:       f.NtCity,
			State:      f.State,
			StreetName: f.Address.StreetName,
		}
		if f.Display.Latitude != nil {
			selected.Lat = *f.Display.Latitude
		}
		if f.Display.Longitude != nil {
			selected.Lng = *f.Display.Longitude
		}
		out = append(out, selected)
	}
	return out
}
