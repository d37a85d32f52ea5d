package main

import "math"

const EloK = 32

// EloChange computes the zero-sum rating delta for player A against
// player B. actualA is 1 for an A win, 0 for a loss. A's rating moves by
// the returned amount and B's by its negation.
func EloChange(ratingA, ratingB, actualA int) int {
	expectedA := 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
	return int(math.Round(EloK * (float64(actualA) - expectedA)))
}
