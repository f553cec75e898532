package mapview_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GeoFix/GeoFix-Backend/internal/mapview"
)

// mockStore implements mapview.FeatureStore without any database dependency.
type mockStore struct {
	inserted  []mapview.Feature
	corrected []mapview.CorrectedFeature
	found     []mapview.Feature
	err       error

	lastBounds [4]float64
}

func (m *mockStore) InsertFeatures(ctx context.Context, features []mapview.Feature) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.inserted = append(m.inserted, features...)
	return len(features), nil
}

func (m *mockStore) FindInBounds(ctx context.Context, north, south, east, west float64) ([]mapview.Feature, error) {
	m.lastBounds = [4]float64{north, south, east, west}
	return m.found, m.err
}

func (m *mockStore) AllCorrected(ctx context.Context) ([]mapview.CorrectedFeature, error) {
	return m.corrected, m.err
}

func (m *mockStore) InsertCorrected(ctx context.Context, corrected mapview.CorrectedFeature) error {
	if m.err != nil {
		return m.err
	}
	m.corrected = append(m.corrected, corrected)
	return nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestStoreFeatures_NotAnArray verifies that a non-array body is rejected
// with 400 and nothing is written to the store.
func TestStoreFeatures_NotAnArray(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	rec := postJSON(t, h.StoreFeaturesHandler, `{"objectId": 1}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Expected array of features") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if len(store.inserted) != 0 {
		t.Errorf("expected nothing stored, got %d", len(store.inserted))
	}
}

// TestStoreFeatures_AllEmptyObjects verifies that an array of empty objects
// is rejected with 400 after filtering.
func TestStoreFeatures_AllEmptyObjects(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	rec := postJSON(t, h.StoreFeaturesHandler, `[{}, {}, {}]`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No valid features to store") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if len(store.inserted) != 0 {
		t.Errorf("expected nothing stored, got %d", len(store.inserted))
	}
}

// TestStoreFeatures_FiltersEmpties verifies the reported count equals the
// number of non-empty input elements.
func TestStoreFeatures_FiltersEmpties(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	body := `[{"fullPostal":"520123"}, {}, {"fullPostal":"520124"}, {}]`
	rec := postJSON(t, h.StoreFeaturesHandler, body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected count 2, got %d", resp.Count)
	}
	if len(store.inserted) != 2 {
		t.Errorf("expected 2 stored, got %d", len(store.inserted))
	}
}

// TestStoreFeatures_DropsNonObjectElements verifies stray scalars inside the
// array are filtered like empty records instead of failing the whole upload.
func TestStoreFeatures_DropsNonObjectElements(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	body := `[5, "stray", null, [1,2], {"fullPostal":"520123"}]`
	rec := postJSON(t, h.StoreFeaturesHandler, body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected count 1, got %d", resp.Count)
	}
	if len(store.inserted) != 1 || store.inserted[0].FullPostal != "520123" {
		t.Errorf("unexpected stored features: %+v", store.inserted)
	}
}

// TestStoreFeatures_StoreError verifies bulk-insert failures surface as 500
// with the underlying error message.
func TestStoreFeatures_StoreError(t *testing.T) {
	store := &mockStore{err: errors.New("write concern failed")}
	h := mapview.Handler{Store: store}

	rec := postJSON(t, h.StoreFeaturesHandler, `[{"fullPostal":"520123"}]`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "write concern failed") {
		t.Errorf("expected underlying error in body, got: %s", rec.Body.String())
	}
}

// TestFeaturesInBounds_MissingParam verifies each of the four bounds params
// is required.
func TestFeaturesInBounds_MissingParam(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	urls := []string{
		"/test?south=1&east=2&west=1",
		"/test?north=2&east=2&west=1",
		"/test?north=2&south=1&west=1",
		"/test?north=2&south=1&east=2",
	}
	for _, u := range urls {
		req := httptest.NewRequest(http.MethodGet, u, nil)
		rec := httptest.NewRecorder()
		h.FeaturesInBoundsHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", u, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Missing bounds parameters") {
			t.Errorf("%s: unexpected body: %s", u, rec.Body.String())
		}
	}
}

// TestFeaturesInBounds_PassesBounds verifies the parsed floats reach the
// store in the right order and results are returned as-is.
func TestFeaturesInBounds_PassesBounds(t *testing.T) {
	lat, lng := 1.5, 1.5
	store := &mockStore{found: []mapview.Feature{{
		FullPostal: "520123",
		Display:    mapview.Coordinate{Latitude: &lat, Longitude: &lng},
	}}}
	h := mapview.Handler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/test?north=2&south=1&east=2&west=1", nil)
	rec := httptest.NewRecorder()
	h.FeaturesInBoundsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastBounds != [4]float64{2, 1, 2, 1} {
		t.Errorf("unexpected bounds passed to store: %v", store.lastBounds)
	}

	var features []mapview.Feature
	if err := json.NewDecoder(rec.Body).Decode(&features); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(features) != 1 || features[0].FullPostal != "520123" {
		t.Errorf("unexpected features: %+v", features)
	}
}

// TestFeaturesInBounds_EmptyResult verifies an empty result encodes as a
// JSON array, not null.
func TestFeaturesInBounds_EmptyResult(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/test?north=2&south=1&east=2&west=1", nil)
	rec := httptest.NewRecorder()
	h.FeaturesInBoundsHandler(rec, req)

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

// TestAllFeatures returns every corrected record for the dashboard.
func TestAllFeatures(t *testing.T) {
	store := &mockStore{corrected: []mapview.CorrectedFeature{
		{Address: "1 Marina Blvd", Coordinates: []float64{103.85, 1.28}, PoiType: "office"},
	}}
	h := mapview.Handler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	h.AllFeaturesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []mapview.CorrectedFeature
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 1 || records[0].PoiType != "office" {
		t.Errorf("unexpected records: %+v", records)
	}
}

// TestStoreCorrected_CoordinateInvariant verifies the exactly-2-numbers rule
// is enforced at write time.
func TestStoreCorrected_CoordinateInvariant(t *testing.T) {
	store := &mockStore{}
	h := mapview.Handler{Store: store}

	rec := postJSON(t, h.StoreCorrectedHandler,
		`{"address":"1 Marina Blvd","poi_type":"office","coordinates":[103.85]}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "exactly 2 numbers") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = postJSON(t, h.StoreCorrectedHandler,
		`{"address":"1 Marina Blvd","poi_type":"office","coordinates":[103.85,1.28]}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.corrected) != 1 {
		t.Errorf("expected 1 stored, got %d", len(store.corrected))
	}
}
