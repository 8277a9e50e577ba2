package pricing

import (
	"log/slog"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

// Decision is the outcome of evaluating a listing against the limit table.
type Decision int

const (
	Accepted Decision = iota
	RejectedUnknownVariant
	RejectedNoLimit
	RejectedOverLimit
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case RejectedUnknownVariant:
		return "rejected: unknown variant"
	case RejectedNoLimit:
		return "rejected: no limit configured"
	case RejectedOverLimit:
		return "rejected: over limit"
	}
	return "unknown decision"
}

// Policy decides whether a classified listing is worth notifying about.
// The limit table is immutable for the lifetime of a run.
type Policy struct {
	limits     map[models.Variant]float64
	permissive bool
}

// NewPolicy builds a Policy from a per-variant ceiling table. When
// permissive is true, listings with an unknown variant are accepted if
// their price is at or below ANY configured ceiling; the default strict
// mode rejects them outright.
func NewPolicy(limits map[models.Variant]float64, permissive bool) *Policy {
	return &Policy{limits: limits, permissive: permissive}
}

// Limit returns the ceiling for a variant, if one is configured.
func (p *Policy) Limit(variant models.Variant) (float64, bool) {
	limit, ok := p.limits[variant]
	return limit, ok
}

// Evaluate applies the ceiling table to one (variant, price) pair.
// The ceiling is inclusive: a listing priced exactly at the limit matches.
func (p *Policy) Evaluate(variant models.Variant, price float64) Decision {
	if !variant.Known() {
		if p.permissive && p.underAnyLimit(price) {
			return Accepted
		}
		return RejectedUnknownVariant
	}

	limit, ok := p.limits[variant]
	if !ok {
		// The table is presumed incomplete, not the listing invalid.
		slog.Warn("No price limit configured for variant", "variant", variant)
		return RejectedNoLimit
	}

	if price > limit {
		return RejectedOverLimit
	}
	return Accepted
}

// Accept is the boolean view of Evaluate.
func (p *Policy) Accept(variant models.Variant, price float64) bool {
	return p.Evaluate(variant, price) == Accepted
}

func (p *Policy) underAnyLimit(price float64) bool {
	for _, limit := range p.limits {
		if price <= limit {
			return true
		}
	}
	return false
}
