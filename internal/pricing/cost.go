// Package pricing computes the itemized cost of a scaling run.
package pricing

import (
	"fmt"
	"math"

	"github.com/fakelit/scalewatch/internal/config"
	"github.com/fakelit/scalewatch/internal/errors"
)

// Cost is the itemized price of scaling from CurrentUnits to TargetUnits.
// All amounts are decimal dollars, rounded to 2 decimals at this boundary
// only; intermediate arithmetic is unrounded.
type Cost struct {
	CurrentUnits    int     `json:"current_units"`
	TargetUnits     int     `json:"target_units"`
	AdditionalUnits int     `json:"additional_units"`
	BaseCost        float64 `json:"base_cost"`
	PerUnitCost     float64 `json:"per_unit_cost"`
	ScalingFee      float64 `json:"scaling_fee"`
	TotalCost       float64 `json:"total_cost"`
	Currency        string  `json:"currency"`
}

// Calculator computes scaling costs from configured pricing coefficients.
type Calculator struct {
	baseCost    float64
	perUnitRate float64
	scalingFee  float64
	currency    string
}

// NewCalculator creates a Calculator from a gateway's pricing configuration.
func NewCalculator(p config.PricingConfig) *Calculator {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Calculator{
		baseCost:    p.BaseCost,
		perUnitRate: p.PerUnitCost,
		scalingFee:  p.ScalingFee,
		currency:    currency,
	}
}

// Zero returns a Calculator whose costs are always zero. Used when payment
// is disabled: the workflow proceeds as if payment succeeded with zero cost.
func Zero() *Calculator {
	return &Calculator{currency: "USD"}
}

// Calculate returns the itemized cost of scaling from current to target
// units. Targets below the current capacity are rejected rather than clamped;
// the threshold trigger should never produce them, so one is a caller bug.
func (c *Calculator) Calculate(current, target int) (Cost, error) {
	if current < 0 {
		return Cost{}, fmt.Errorf("current units %d: %w", current, errors.ErrInvalidRange)
	}
	if target < current {
		return Cost{}, fmt.Errorf("target %d below current %d: %w", target, current, errors.ErrInvalidRange)
	}

	additional := target - current
	perUnit := float64(additional) * c.perUnitRate
	total := c.baseCost + perUnit + c.scalingFee

	return Cost{
		CurrentUnits:    current,
		TargetUnits:     target,
		AdditionalUnits: additional,
		BaseCost:        round2(c.baseCost),
		PerUnitCost:     round2(perUnit),
		ScalingFee:      round2(c.scalingFee),
		TotalCost:       round2(total),
		Currency:        c.currency,
	}, nil
}

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
