package request

// CreateReview holds the request body for submitting a restaurant review.
type CreateReview struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	CustomerID   string `json:"customer_id" validate:"required"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=2000"`
}

// UpdateReviewStatus holds the request body for moderating a review.
type UpdateReviewStatus struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}
