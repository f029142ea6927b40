package booking

import (
	"fmt"
	"math"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the estimated price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	HourlyRateCents int64
	EstimatedHours  float64
}

// HourlyPricingStrategy prices a booking as the provider's hourly rate times the estimate.
type HourlyPricingStrategy struct{}

// NewHourlyPricingStrategy creates a new HourlyPricingStrategy.
func NewHourlyPricingStrategy() *HourlyPricingStrategy {
	return &HourlyPricingStrategy{}
}

// Calculate computes hourlyRate × estimatedHours, rounded half away from zero to whole cents.
func (s *HourlyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.HourlyRateCents < 0 {
		return 0, fmt.Errorf("hourly rate cannot be negative")
	}
	if params.EstimatedHours <= 0 {
		return 0, fmt.Errorf("estimated hours must be positive")
	}
	return int64(math.Round(float64(params.HourlyRateCents) * params.EstimatedHours)), nil
}
