package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/skinsight/internal/api/request"
	"github.com/edvin/skinsight/internal/api/response"
	"github.com/edvin/skinsight/internal/core"
)

// Review handles restaurant review endpoints.
type Review struct {
	svc *core.ReviewService
}

func NewReview(svc *core.ReviewService) *Review {
	return &Review{svc: svc}
}

// Create submits a new review. Reviews start out pending moderation.
func (h *Review) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReview
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.svc.Create(r.Context(), req.RestaurantID, req.CustomerID, req.Rating, req.Comment)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, review)
}

// Get retrieves a review by ID.
func (h *Review) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, review)
}

// ListByRestaurant lists a restaurant's reviews, optionally filtered by
// status and minimum rating.
func (h *Review) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)
	filter := core.ReviewFilter{Status: r.URL.Query().Get("status")}
	if minStr := r.URL.Query().Get("min_rating"); minStr != "" {
		if min, err := strconv.Atoi(minStr); err == nil && min >= 1 && min <= 5 {
			filter.MinRating = min
		}
	}

	reviews, hasMore, err := h.svc.ListByRestaurant(r.Context(), restaurantID, filter, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(reviews) > 0 {
		nextCursor = reviews[len(reviews)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, reviews, nextCursor, hasMore)
}

// SetStatus moderates a review, moving it to approved or rejected.
func (h *Review) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateReviewStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, review)
}
