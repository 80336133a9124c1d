package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-client/internal/domain"
)

type ReviewService struct {
	reviews domain.ReviewRemote
	auth    domain.AuthRemote
	session SessionManager
	now     func() time.Time
}

func NewReviewService(reviews domain.ReviewRemote, auth domain.AuthRemote, session SessionManager) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		auth:    auth,
		session: session,
		now:     time.Now,
	}
}

func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	reviews, err := s.reviews.Reviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) Average(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	summary, err := s.reviews.AverageRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rating: %w", err)
	}
	return summary, nil
}

// Submit posts a review signed with the user's profile details.
func (s *ReviewService) Submit(ctx context.Context, productID string, rating int, text string) (*domain.Review, error) {
	text = strings.TrimSpace(text)
	if productID == "" || text == "" {
		return nil, fmt.Errorf("%w: product and review text are required", domain.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	tok, _, err := currentUser(s.session)
	if err != nil {
		return nil, err
	}
	profile, err := s.auth.Profile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	review := domain.Review{
		Name:        profile.FullName,
		Email:       profile.Email,
		Phone:       profile.Contact,
		Date:        s.now().UTC(),
		Rating:      rating,
		Description: text,
	}
	if err := s.reviews.SubmitReview(ctx, tok, &domain.ReviewSubmission{ProductID: productID, Review: review}); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	return &review, nil
}
