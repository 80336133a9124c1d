package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront-client/internal/domain"
)

func (c *Client) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	var body struct {
		Reviews []domain.Review `json:"reviews"`
	}
	if err := c.get(ctx, "reviews.list", "/product-reviews/reviews/"+url.PathEscape(productID), &body); err != nil {
		return nil, err
	}
	if body.Reviews == nil {
		return []domain.Review{}, nil
	}
	return body.Reviews, nil
}

func (c *Client) AverageRating(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	var summary domain.ReviewSummary
	if err := c.get(ctx, "reviews.average", "/product-reviews/reviews/average/"+url.PathEscape(productID), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) SubmitReview(ctx context.Context, token string, submission *domain.ReviewSubmission) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/product-reviews/reviews",
		endpoint: "reviews.submit",
		token:    token,
		body:     submission,
	}, nil)
}
