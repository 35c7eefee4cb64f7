package admin

import (
	"testing"
	"time"

	"tattootime/models"
	"tattootime/pricing"
)

func TestDefaultPricingRuleVocabulary(t *testing.T) {
	rule := defaultPricingRule(time.Now())

	wantBodyParts := map[string]float64{
		"arm": 1.0, "leg": 1.0, "back": 1.2, "chest": 1.3, "ribs": 1.4,
		"neck": 1.5, "face": 2.0, "hand": 1.8, "foot": 1.6,
	}
	for part, want := range wantBodyParts {
		if got := rule.BodyPartMultipliers[part]; got != want {
			t.Errorf("bodyPart %q = %v, want %v", part, got, want)
		}
	}

	wantStyles := map[string]float64{
		"traditional": 1.0, "realistic": 1.4, "watercolor": 1.3,
		"geometric": 1.1, "minimalist": 0.9, "japanese": 1.2,
		"tribal": 1.0, "lettering": 0.8,
	}
	for style, want := range wantStyles {
		if got := rule.StyleMultipliers[style]; got != want {
			t.Errorf("style %q = %v, want %v", style, got, want)
		}
	}

	wantComplexities := map[string]float64{
		"simple": 0.9, "medium": 1.0, "complex": 1.3, "very_complex": 1.6,
	}
	for c, want := range wantComplexities {
		if got := rule.ComplexityMultipliers[c]; got != want {
			t.Errorf("complexity %q = %v, want %v", c, got, want)
		}
	}

	if rule.DepositPercentage != 30 || rule.BasePrice != 120 {
		t.Errorf("basePrice/deposit = %v/%v, want 120/30", rule.BasePrice, rule.DepositPercentage)
	}
	if !rule.IsActive || rule.ID != defaultPricingRuleID {
		t.Errorf("rule should be active under the fixed id, got %+v", rule)
	}
}

// A very_complex tattoo must be priced with its seeded multiplier, not the
// 1.0 fail-open fallback.
func TestDefaultRulePricesVeryComplex(t *testing.T) {
	rule := defaultPricingRule(time.Now())

	p := pricing.Calculate(&rule, pricing.Input{
		BodyPart:          "arm",
		Size:              models.Size{Width: 5, Height: 5},
		Style:             "traditional",
		Complexity:        "very_complex",
		EstimatedDuration: 60,
	})
	if p.ComplexityMultiplier != 1.6 {
		t.Fatalf("complexityMultiplier = %v, want 1.6", p.ComplexityMultiplier)
	}
	// 120 * 1.0 * 0.8 (small) * 1.0 * 1.6
	if p.TotalPrice != 153.6 {
		t.Errorf("totalPrice = %v, want 153.6", p.TotalPrice)
	}
}
