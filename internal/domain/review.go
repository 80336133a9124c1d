package domain

import "time"

type Review struct {
	ID          string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Date        time.Time `json:"date"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
}

// ReviewSubmission is the body of POST /product-reviews/reviews.
type ReviewSubmission struct {
	ProductID string `json:"productId"`
	Review    Review `json:"review"`
}

type ReviewSummary struct {
	AverageRating float64 `json:"averageRating"`
}
