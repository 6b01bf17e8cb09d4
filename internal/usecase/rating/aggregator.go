// Package rating computes rating aggregates over review sets.
package rating

import (
	"math"

	"github.com/Pesokrava/local_directory/internal/domain"
)

// Summarize computes the count, mean and 1-5 distribution of a rating set.
// The mean is rounded half-up to one decimal. Callers supply only the ratings
// of published, non-deleted reviews; out-of-range values cannot occur here
// because they are rejected at write time.
func Summarize(ratings []int) domain.RatingSummary {
	summary := domain.RatingSummary{
		TotalReviews:       len(ratings),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	if len(ratings) == 0 {
		return summary
	}

	sum := 0
	for _, r := range ratings {
		sum += r
		summary.RatingDistribution[r]++
	}

	mean := float64(sum) / float64(len(ratings))
	summary.AverageRating = math.Floor(mean*10+0.5) / 10

	return summary
}
