package domain

import "strconv"

// RatingSummary is the aggregate persisted onto a book.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// AverageRating returns the mean of ratings rounded to one decimal place, or 0 when empty.
// Rounding works on the exact binary value of the mean, so 23/20 (stored just
// below 1.15) gives 1.1 while an exact half such as 4.25 rounds to even.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	return rounded
}

// SummarizeReviews computes the rating summary for a set of reviews.
func SummarizeReviews(reviews []*Review) RatingSummary {
	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
	}
	return RatingSummary{AverageRating: AverageRating(ratings), TotalReviews: len(ratings)}
}
