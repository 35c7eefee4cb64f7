package pricing

import (
	"math"

	"tattootime/models"
)

// Default size multipliers, used only when the active rule omits a bracket.
var defaultSizeMultipliers = map[string]float64{
	"small":       0.8,
	"medium":      1.0,
	"large":       1.3,
	"extra_large": 1.6,
}

// Input carries the tattoo parameters the price is computed from.
type Input struct {
	BodyPart          string
	Size              models.Size
	Style             string
	Complexity        string
	EstimatedDuration int // minutes
}

// SizeBracket maps a tattoo area in cm² to its pricing bracket.
func SizeBracket(area float64) string {
	switch {
	case area <= 25:
		return "small"
	case area <= 100:
		return "medium"
	case area <= 400:
		return "large"
	default:
		return "extra_large"
	}
}

// Calculate computes a price from the rule snapshot. It is pure and never
// fails: multiplier lookups for unknown keys fall back to 1.0, size brackets
// missing from the rule fall back to the built-in defaults. Monetary values
// are rounded half-up on the cent.
func Calculate(rule *models.PricingRule, in Input) models.Pricing {
	bodyPartMultiplier := lookup(rule.BodyPartMultipliers, in.BodyPart)

	bracket := SizeBracket(in.Size.Width * in.Size.Height)
	sizeMultiplier, ok := rule.SizeMultipliers[bracket]
	if !ok {
		sizeMultiplier = defaultSizeMultipliers[bracket]
	}

	styleMultiplier := lookup(rule.StyleMultipliers, in.Style)
	complexityMultiplier := lookup(rule.ComplexityMultipliers, in.Complexity)

	basePrice := rule.BasePrice * (float64(in.EstimatedDuration) / 60)
	totalPrice := basePrice * bodyPartMultiplier * sizeMultiplier * styleMultiplier * complexityMultiplier
	depositAmount := totalPrice * rule.DepositPercentage / 100

	return models.Pricing{
		BasePrice:            roundCents(basePrice),
		BodyPartMultiplier:   bodyPartMultiplier,
		SizeMultiplier:       sizeMultiplier,
		StyleMultiplier:      styleMultiplier,
		ComplexityMultiplier: complexityMultiplier,
		TotalPrice:           roundCents(totalPrice),
		DepositAmount:        roundCents(depositAmount),
		DepositPaid:          false,
	}
}

func lookup(multipliers map[string]float64, key string) float64 {
	if m, ok := multipliers[key]; ok {
		return m
	}
	return 1.0
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
