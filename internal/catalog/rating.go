package catalog

import (
	"fmt"

	"shopnest/internal/domain"

	"github.com/shopspring/decimal"
)

// ratingPlaces is the number of decimal places kept on a rating average
const ratingPlaces = 2

// ValidateRating checks a single review rating
func ValidateRating(rating int) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRating, rating)
	}
	return nil
}

// AggregateRating folds one new rating into a running average without
// rescanning the review history. The average is rounded half away from
// zero to two places on its decimal value.
func AggregateRating(current domain.Rating, rating int) (domain.Rating, error) {
	if err := ValidateRating(rating); err != nil {
		return current, err
	}

	count := current.Count
	if count < 0 {
		count = 0
	}
	newCount := count + 1

	total := decimal.NewFromFloat(current.Avg).
		Mul(decimal.NewFromInt(int64(count))).
		Add(decimal.NewFromInt(int64(rating)))
	avg, _ := total.Div(decimal.NewFromInt(int64(newCount))).Round(ratingPlaces).Float64()

	return domain.Rating{Avg: avg, Count: newCount}, nil
}
