package models

// Variant is the canonical product label a listing title classifies into.
type Variant string

// VariantUnknown means the title could not be mapped onto the catalog.
const VariantUnknown Variant = ""

const (
	VariantIPhone11       Variant = "iPhone 11"
	VariantIPhone11Pro    Variant = "iPhone 11 Pro"
	VariantIPhone11ProMax Variant = "iPhone 11 Pro Max"
	VariantIPhone12       Variant = "iPhone 12"
	VariantIPhone12Pro    Variant = "iPhone 12 Pro"
	VariantIPhone12ProMax Variant = "iPhone 12 Pro Max"
	VariantIPhone13       Variant = "iPhone 13"
	VariantIPhone13Pro    Variant = "iPhone 13 Pro"
	VariantIPhone13ProMax Variant = "iPhone 13 Pro Max"
	VariantIPhone14       Variant = "iPhone 14"
	VariantIPhone14Plus   Variant = "iPhone 14 Plus"
	VariantIPhone14Pro    Variant = "iPhone 14 Pro"
	VariantIPhone14ProMax Variant = "iPhone 14 Pro Max"
	VariantIPhone15       Variant = "iPhone 15"
	VariantIPhone15Pro    Variant = "iPhone 15 Pro"
	VariantIPhone15ProMax Variant = "iPhone 15 Pro Max"
)

// Known returns true for any catalog variant, false for VariantUnknown.
func (v Variant) Known() bool {
	return v != VariantUnknown
}

func (v Variant) String() string {
	if v == VariantUnknown {
		return "unknown"
	}
	return string(v)
}

// AllVariants lists the catalog in generation order, most specific first
// within each generation. The classifier's pattern catalog is built from
// this ordering, so it is load-bearing: a less specific variant listed
// before a more specific one would misclassify qualified titles.
var AllVariants = []Variant{
	VariantIPhone15ProMax,
	VariantIPhone15Pro,
	VariantIPhone15,
	VariantIPhone14ProMax,
	VariantIPhone14Plus,
	VariantIPhone14Pro,
	VariantIPhone14,
	VariantIPhone13ProMax,
	VariantIPhone13Pro,
	VariantIPhone13,
	VariantIPhone12ProMax,
	VariantIPhone12Pro,
	VariantIPhone12,
	VariantIPhone11ProMax,
	VariantIPhone11Pro,
	VariantIPhone11,
}

// RawListing is one title/price/link triple as extracted from the search
// results page. Immutable once produced; its only identity is the URL.
type RawListing struct {
	Title     string `json:"title" validate:"required"`
	PriceText string `json:"price_text"`
	URL       string `json:"url" validate:"required,url"`
}

// Listing is the enriched record handed to the notifier after
// classification and filtering.
type Listing struct {
	Variant     Variant `json:"variant"`
	Price       float64 `json:"price" validate:"gte=0"`
	URL         string  `json:"url" validate:"required,url"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
}
