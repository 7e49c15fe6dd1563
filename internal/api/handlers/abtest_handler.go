package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/inkatlas/tattoo-directory/internal/application/services"
	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

// ABTestHandler exposes the experiment framework over HTTP
type ABTestHandler struct {
	abtests *services.SearchABTestService
}

// NewABTestHandler creates a new A/B test handler
func NewABTestHandler(abtests *services.SearchABTestService) *ABTestHandler {
	return &ABTestHandler{abtests: abtests}
}

type createTestRequest struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Variants     []entities.Variant `json:"variants"`
	TrafficSplit float64            `json:"traffic_split"`
	Metrics      []string           `json:"metrics"`
}

// CreateTest handles POST /api/abtests
func (h *ABTestHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	var req createTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	test, err := h.abtests.CreateTest(r.Context(), req.ID, services.TestConfig{
		Name:         req.Name,
		Variants:     req.Variants,
		TrafficSplit: req.TrafficSplit,
		Metrics:      req.Metrics,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, test)
}

// GetVariant handles GET /api/abtests/{id}/variant
func (h *ABTestHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")
	userID := r.URL.Query().Get("user")
	if testID == "" || userID == "" {
		respondWithError(w, http.StatusBadRequest, "test id and user are required")
		return
	}

	variant := h.abtests.UserVariant(r.Context(), testID, userID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"test_id": testID,
		"user_id": userID,
		"variant": variant,
	})
}

type trackEventRequest struct {
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	UserID    string                 `json:"user_id"`
}

// TrackEvent handles POST /api/abtests/{id}/events
func (h *ABTestHandler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")

	var req trackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if testID == "" || req.UserID == "" || req.EventType == "" {
		respondWithError(w, http.StatusBadRequest, "test id, user_id and event_type are required")
		return
	}

	h.abtests.TrackEvent(r.Context(), testID, req.EventType, req.Payload, req.UserID)
	w.WriteHeader(http.StatusAccepted)
}

// GetResults handles GET /api/abtests/{id}/results
func (h *ABTestHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")

	results, err := h.abtests.TestResults(testID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}
