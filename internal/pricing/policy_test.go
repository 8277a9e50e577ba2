package pricing

import (
	"testing"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

func testLimits() map[models.Variant]float64 {
	return map[models.Variant]float64{
		models.VariantIPhone11:       1370,
		models.VariantIPhone14ProMax: 1850,
	}
}

func TestPolicyEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		variant    models.Variant
		price      float64
		permissive bool
		want       Decision
	}{
		{"under limit", models.VariantIPhone11, 1000, false, Accepted},
		{"exactly at limit", models.VariantIPhone14ProMax, 1850, false, Accepted},
		{"just over limit", models.VariantIPhone14ProMax, 1850.01, false, RejectedOverLimit},
		{"well over limit", models.VariantIPhone11, 9999, false, RejectedOverLimit},
		{"no limit configured", models.VariantIPhone15Pro, 100, false, RejectedNoLimit},
		{"unknown variant strict", models.VariantUnknown, 500, false, RejectedUnknownVariant},
		{"unknown variant permissive under a ceiling", models.VariantUnknown, 1500, true, Accepted},
		{"unknown variant permissive over every ceiling", models.VariantUnknown, 5000, true, RejectedUnknownVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy(testLimits(), tt.permissive)
			if got := p.Evaluate(tt.variant, tt.price); got != tt.want {
				t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.variant, tt.price, got, tt.want)
			}
		})
	}
}

func TestPolicyAccept(t *testing.T) {
	p := NewPolicy(testLimits(), false)
	if !p.Accept(models.VariantIPhone11, 1370) {
		t.Error("Accept at the exact ceiling should be true")
	}
	if p.Accept(models.VariantIPhone11, 1371) {
		t.Error("Accept above the ceiling should be false")
	}
}

func TestPolicyLimit(t *testing.T) {
	p := NewPolicy(testLimits(), false)
	if limit, ok := p.Limit(models.VariantIPhone11); !ok || limit != 1370 {
		t.Errorf("Limit(iPhone 11) = %v, %v, want 1370, true", limit, ok)
	}
	if _, ok := p.Limit(models.VariantIPhone15); ok {
		t.Error("Limit for an unconfigured variant should report false")
	}
}
