package mapview

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// Handler serves the mapview endpoints against an injected FeatureStore so
// tests can swap in a fake.
type Handler struct {
	Store FeatureStore
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("Failed to encode response:", err)
	}
}

func (h Handler) StoreFeaturesHandler(w http.ResponseWriter, r *http.Request) {
	var raw []any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid input: Expected array of features",
		})
		return
	}

	features := make([]Feature, 0, len(raw))
	for _, element := range raw {
		// non-object elements are dropped like empty records, they only
		// fail the whole upload if the body itself is not an array
		record, _ := element.(map[string]any)
		feature, ok := NormalizeFeature(record)
		if !ok {
			continue
		}
		features = append(features, feature)
	}

	if len(features) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "No valid features to store",
		})
		return
	}

	if _, err := h.Store.InsertFeatures(r.Context(), features); err != nil {
		log.Println("Error storing features:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Features stored successfully",
		"count":   len(features),
	})
}

func (h Handler) FeaturesInBoundsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	bounds := make(map[string]float64, 4)
	for _, name := range []string{"north", "south", "east", "west"} {
		value := query.Get(name)
		if value == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": "Missing bounds parameters",
			})
			return
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": "Missing bounds parameters",
			})
			return
		}
		bounds[name] = parsed
	}

	features, err := h.Store.FindInBounds(r.Context(),
		bounds["north"], bounds["south"], bounds["east"], bounds["west"])
	if err != nil {
		log.Println("Error fetching features:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	if features == nil {
		features = []Feature{}
	}
	writeJSON(w, http.StatusOK, features)
}

func (h Handler) AllFeaturesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.AllCorrected(r.Context())
	if err != nil {
		log.Println("Error fetching corrected features:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	if records == nil {
		records = []CorrectedFeature{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h Handler) StoreCorrectedHandler(w http.ResponseWriter, r *http.Request) {
	var corrected CorrectedFeature
	if err := json.NewDecoder(r.Body).Decode(&corrected); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid request body",
		})
		return
	}

	if corrected.Address == "" || corrected.PoiType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "address and poi_type are required",
		})
		return
	}
	if len(corrected.Coordinates) != 2 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Coordinates must be an array of exactly 2 numbers",
		})
		return
	}

	if err := h.Store.InsertCorrected(r.Context(), corrected); err != nil {
		log.Println("Error storing corrected feature:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Internal server error",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Corrected feature stored successfully",
	})
}
