package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"athleteMindAPI/middleware"
	"athleteMindAPI/services"
)

type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

type contentRequest struct {
	Slug string `json:"slug"`
}

type contentCall func(ctx context.Context, clerkID, slug string) (*services.ContentResult, error)

func (h *ContentHandler) handleActivity(w http.ResponseWriter, r *http.Request, call contentCall) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Slug == "" {
		respondWithError(w, http.StatusBadRequest, "slug is required")
		return
	}

	result, err := call(ctx, clerkID, req.Slug)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ContentHandler) CompleteExercise(w http.ResponseWriter, r *http.Request) {
	h.handleActivity(w, r, h.contentService.CompleteExercise)
}

func (h *ContentHandler) RecordResourceView(w http.ResponseWriter, r *http.Request) {
	h.handleActivity(w, r, h.contentService.RecordResourceView)
}

func (h *ContentHandler) RecordEducationView(w http.ResponseWriter, r *http.Request) {
	h.handleActivity(w, r, h.contentService.RecordEducationView)
}
