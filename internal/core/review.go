package core

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/skinsight/internal/model"
	"github.com/edvin/skinsight/internal/platform"
)

const reviewColumns = "id, restaurant_id, customer_id, rating, comment, status, created_at, updated_at"

// ReviewService manages restaurant reviews.
type ReviewService struct {
	db DB
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db DB) *ReviewService {
	return &ReviewService{db: db}
}

// Create stores a new review in pending state.
func (s *ReviewService) Create(ctx context.Context, restaurantID, customerID string, rating int, comment string) (*model.Review, error) {
	review := &model.Review{
		ID:           platform.NewID(),
		RestaurantID: restaurantID,
		CustomerID:   customerID,
		Rating:       rating,
		Comment:      comment,
		Status:       model.ReviewStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	review.UpdatedAt = review.CreatedAt

	_, err := s.db.Exec(ctx,
		`INSERT INTO reviews (id, restaurant_id, customer_id, rating, comment, status, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)`,
		review.ID, review.RestaurantID, review.CustomerID, review.Rating,
		review.Comment, review.Status, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// GetByID retrieves a review by ID.
func (s *ReviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var r model.Review
	err := s.db.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 AND is_deleted = FALSE`, id,
	).Scan(&r.ID, &r.RestaurantID, &r.CustomerID, &r.Rating, &r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("review %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return &r, nil
}

// ReviewFilter narrows ListByRestaurant results.
type ReviewFilter struct {
	Status    string
	MinRating int
}

// ListByRestaurant retrieves reviews for a restaurant with optional status
// and minimum-rating filters and cursor-based pagination.
func (s *ReviewService) ListByRestaurant(ctx context.Context, restaurantID string, filter ReviewFilter, limit int, cursor string) ([]model.Review, bool, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE restaurant_id = $1 AND is_deleted = FALSE`
	args := []any{restaurantID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.MinRating > 0 {
		query += fmt.Sprintf(` AND rating >= $%d`, argIdx)
		args = append(args, filter.MinRating)
		argIdx++
	}
	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.CustomerID, &r.Rating, &r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate reviews: %w", err)
	}

	hasMore := len(reviews) > limit
	if hasMore {
		reviews = reviews[:limit]
	}
	return reviews, hasMore, nil
}

// SetStatus moves a pending review to approved or rejected. Moderating a
// review twice reports ErrAlreadyExists rather than silently flipping it.
func (s *ReviewService) SetStatus(ctx context.Context, id, status string) (*model.Review, error) {
	if status != model.ReviewStatusApproved && status != model.ReviewStatusRejected {
		return nil, fmt.Errorf("invalid review status %q", status)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE reviews SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = 'pending' AND is_deleted = FALSE`, status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update review %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the review is gone or it already left pending.
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("review %s already moderated: %w", id, ErrAlreadyExists)
	}
	return s.GetByID(ctx, id)
}
