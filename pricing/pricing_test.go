package pricing

import (
	"testing"

	"tattootime/models"
)

func testRule() *models.PricingRule {
	return &models.PricingRule{
		BasePrice: 120,
		BodyPartMultipliers: map[string]float64{
			"arm":  1.0,
			"ribs": 1.4,
		},
		SizeMultipliers: map[string]float64{
			"small":       0.8,
			"medium":      1.0,
			"large":       1.3,
			"extra_large": 1.6,
		},
		StyleMultipliers: map[string]float64{
			"realistic": 1.4,
		},
		ComplexityMultipliers: map[string]float64{
			"simple":  0.9,
			"complex": 1.3,
		},
		DepositPercentage: 30,
	}
}

func TestCalculateBaseAndDeposit(t *testing.T) {
	in := Input{
		BodyPart:          "arm",
		Size:              models.Size{Width: 5, Height: 10}, // 50 cm² -> medium
		Style:             "traditional",                     // unknown -> 1.0
		Complexity:        "medium",                          // unknown -> 1.0
		EstimatedDuration: 90,
	}
	p := Calculate(testRule(), in)

	if p.BasePrice != 180.00 {
		t.Errorf("basePrice = %v, want 180.00", p.BasePrice)
	}
	if p.TotalPrice != 180.00 {
		t.Errorf("totalPrice = %v, want 180.00", p.TotalPrice)
	}
	if p.DepositAmount != 54.00 {
		t.Errorf("depositAmount = %v, want 54.00", p.DepositAmount)
	}
	if p.DepositPaid {
		t.Error("depositPaid should start false")
	}
}

func TestCalculateUnknownKeysFailOpen(t *testing.T) {
	in := Input{
		BodyPart:          "tailbone",
		Size:              models.Size{Width: 3, Height: 3},
		Style:             "brutalist",
		Complexity:        "unspeakable",
		EstimatedDuration: 60,
	}
	p := Calculate(testRule(), in)

	if p.BodyPartMultiplier != 1.0 || p.StyleMultiplier != 1.0 || p.ComplexityMultiplier != 1.0 {
		t.Errorf("unknown multiplier keys must fall back to 1.0, got %v/%v/%v",
			p.BodyPartMultiplier, p.StyleMultiplier, p.ComplexityMultiplier)
	}
}

func TestSizeBracketBoundaries(t *testing.T) {
	cases := []struct {
		area float64
		want string
	}{
		{25, "small"},
		{25.01, "medium"},
		{100, "medium"},
		{100.01, "large"},
		{400, "large"},
		{400.01, "extra_large"},
	}
	for _, c := range cases {
		if got := SizeBracket(c.area); got != c.want {
			t.Errorf("SizeBracket(%v) = %q, want %q", c.area, got, c.want)
		}
	}
}

func TestSizeBracketRuleDefault(t *testing.T) {
	rule := testRule()
	delete(rule.SizeMultipliers, "extra_large")

	in := Input{
		Size:              models.Size{Width: 30, Height: 30}, // 900 cm²
		EstimatedDuration: 60,
	}
	p := Calculate(rule, in)
	if p.SizeMultiplier != 1.6 {
		t.Errorf("missing extra_large bracket should default to 1.6, got %v", p.SizeMultiplier)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{
		BodyPart:          "ribs",
		Size:              models.Size{Width: 12, Height: 12},
		Style:             "realistic",
		Complexity:        "complex",
		EstimatedDuration: 150,
	}
	first := Calculate(testRule(), in)
	for i := 0; i < 10; i++ {
		if got := Calculate(testRule(), in); got != first {
			t.Fatalf("calculation not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestCalculateRounding(t *testing.T) {
	rule := testRule()
	rule.BasePrice = 100
	rule.DepositPercentage = 33.33

	in := Input{
		Size:              models.Size{Width: 1, Height: 1},
		EstimatedDuration: 100, // 166.666... base
	}
	p := Calculate(rule, in)
	if p.BasePrice != 166.67 {
		t.Errorf("basePrice = %v, want 166.67", p.BasePrice)
	}
	// total = 166.666... * 0.8 = 133.333...
	if p.TotalPrice != 133.33 {
		t.Errorf("totalPrice = %v, want 133.33", p.TotalPrice)
	}
}
