package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

var nonPriceRunes = regexp.MustCompile(`[^\d,.]`)

// ExtractPrice parses a free-text price field ("1 234,56 zł", "1,234.56",
// "4500 zł do negocjacji") into a numeric value. The second return value
// is false when no price could be parsed; that is an expected outcome for
// "Zamienię"-style listings, not an error.
//
// Separator handling: when both '.' and ',' are present, ',' is a
// thousands separator and '.' the decimal point. A lone ',' is a Polish
// decimal comma.
func ExtractPrice(text string) (float64, bool) {
	cleaned := nonPriceRunes.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
