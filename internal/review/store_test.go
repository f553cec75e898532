package review

import (
	"errors"
	"testing"
)

var orchard = Location{Latitude: 1.3048, Longitude: 103.8318}

// TestAdd_RatingBounds verifies the submit rule: ratings outside 1..5 are
// rejected and never stored.
func TestAdd_RatingBounds(t *testing.T) {
	s := NewStore()

	for _, rating := range []int{0, -1, 6} {
		if _, err := s.Add(orchard, rating, "nope"); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
	if len(s.All()) != 0 {
		t.Errorf("expected no reviews stored, got %d", len(s.All()))
	}

	review, err := s.Add(orchard, 5, "great kopi")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if review.ID == "" || review.Timestamp == 0 {
		t.Errorf("expected generated id and timestamp, got %+v", review)
	}
}

// TestByLocation_Radius verifies nearby reviews are returned and far ones
// excluded, with the 0.1km default radius.
func TestByLocation_Radius(t *testing.T) {
	s := NewStore()

	// ~50m north of the anchor
	near := Location{Latitude: orchard.Latitude + 0.00045, Longitude: orchard.Longitude}
	// ~5km east
	far := Location{Latitude: orchard.Latitude, Longitude: orchard.Longitude + 0.045}

	if _, err := s.Add(near, 4, "close by"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(far, 2, "another town"); err != nil {
		t.Fatal(err)
	}

	got := s.ByLocation(orchard, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 review in default radius, got %d", len(got))
	}
	if got[0].Text != "close by" {
		t.Errorf("unexpected review: %+v", got[0])
	}

	got = s.ByLocation(orchard, 10)
	if len(got) != 2 {
		t.Errorf("expected both reviews in 10km radius, got %d", len(got))
	}
}

// TestAll_SubmissionOrder verifies All returns a copy in insert order.
func TestAll_SubmissionOrder(t *testing.T) {
	s := NewStore()
	for i, text := range []string{"first", "second", "third"} {
		if _, err := s.Add(orchard, i+1, text); err != nil {
			t.Fatal(err)
		}
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(all))
	}
	for i, want := range []string{"first", "second", "third"} {
		if all[i].Text != want {
			t.Errorf("position %d: expected %q, got %q", i, want, all[i].Text)
		}
	}

	// mutating the copy must not touch the store
	all[0].Text = "mutated"
	if s.All()[0].Text != "first" {
		t.Error("expected All to return a copy")
	}
}
