// Package classifier maps free-text listing titles onto the canonical
// variant catalog. Classification is a pure function of the title and the
// static pattern tables below; sellers write titles in mixed Polish and
// English with inconsistent spacing, so matching runs in four stages of
// decreasing strictness before giving up.
package classifier

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

// generations the catalog covers, newest first.
var generations = []int{15, 14, 13, 12, 11}

// plusGenerations marks generations that shipped a Plus size.
var plusGenerations = map[int]bool{14: true}

// brandTokens are the spellings sellers use for the brand, including the
// common Polish phonetic ones.
var brandTokens = []string{"iphone", "ifon", "ajfon", "ip"}

// pattern is one entry of the direct-match catalog. notFollowedBy stands
// in for a negative lookahead (RE2 has none): a candidate match is
// discarded when the text right after it continues with a qualifier,
// which would mean a more specific variant is being named.
type pattern struct {
	re            *regexp.Regexp
	notFollowedBy *regexp.Regexp
	variant       models.Variant
}

// catalog is ordered most qualifiers first within each generation. The
// ordering is load-bearing: a bare-generation pattern evaluated before
// "Pro Max" would swallow qualified titles.
var catalog = buildCatalog()

func buildCatalog() []pattern {
	brand := `(?:iphone\s*|ip\s*)?`
	var out []pattern
	for _, gen := range generations {
		g := strconv.Itoa(gen)
		out = append(out, pattern{
			re:      regexp.MustCompile(`\b` + brand + g + `\s*pro\s*max\b`),
			variant: variantFor(gen, "pro max"),
		})
		if plusGenerations[gen] {
			out = append(out, pattern{
				re:      regexp.MustCompile(`\b` + brand + g + `\s*plus\b`),
				variant: variantFor(gen, "plus"),
			})
		}
		out = append(out, pattern{
			re:            regexp.MustCompile(`\b` + brand + g + `\s*pro\b`),
			notFollowedBy: regexp.MustCompile(`^\s*max\b`),
			variant:       variantFor(gen, "pro"),
		})
		out = append(out, pattern{
			re:            regexp.MustCompile(`\b` + brand + g + `\b`),
			notFollowedBy: regexp.MustCompile(`^\s*(?:pro|plus)\b`),
			variant:       variantFor(gen, ""),
		})
	}
	return out
}

func variantFor(gen int, qualifier string) models.Variant {
	name := fmt.Sprintf("iPhone %d", gen)
	switch qualifier {
	case "pro":
		name += " Pro"
	case "pro max":
		name += " Pro Max"
	case "plus":
		name += " Plus"
	}
	for _, v := range models.AllVariants {
		if string(v) == name {
			return v
		}
	}
	return models.VariantUnknown
}

// aliasKeys maps squashed (alphanumeric-only) spellings onto variants.
// Built once from the catalog ordering, so longer/more specific keys are
// consulted first.
type aliasKey struct {
	key     string
	variant models.Variant
}

var aliases = buildAliases()

func buildAliases() []aliasKey {
	var out []aliasKey
	for _, gen := range generations {
		g := strconv.Itoa(gen)
		suffixes := []struct {
			s string
			q string
		}{
			{g + "promax", "pro max"},
			{g + "plus", "plus"},
			{g + "pro", "pro"},
			{g, ""},
		}
		for _, suf := range suffixes {
			v := variantFor(gen, suf.q)
			if !v.Known() {
				continue
			}
			for _, brand := range brandTokens {
				out = append(out, aliasKey{key: brand + suf.s, variant: v})
			}
		}
	}
	return out
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	urlSegment     = regexp.MustCompile(`iphone[-_]?(\d{2})(?:[-_]?(pro))?(?:[-_]?(max|plus))?`)
)

// normalize case-folds the title and flattens the separators sellers use
// interchangeably ("iphone-14_pro" == "iphone 14 pro").
func normalize(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ", ".", " ", ",", " ").Replace(s)
	return whitespaceRuns.ReplaceAllString(s, " ")
}

// Classify maps a raw listing title onto the variant catalog, or
// VariantUnknown when nothing matches. It never consults the URL or the
// price; see FromURL for the opt-in secondary signal.
func Classify(title string) models.Variant {
	if len(strings.TrimSpace(title)) < 3 {
		return models.VariantUnknown
	}
	norm := normalize(title)

	// Stage 1: direct catalog match, most specific first.
	if v := matchCatalog(norm); v.Known() {
		return v
	}

	// Stage 2: alias lookup on the squashed form. Catches phonetic
	// spellings and separator soup the patterns miss.
	squashed := nonAlnum.ReplaceAllString(norm, "")
	for _, a := range aliases {
		if strings.Contains(squashed, a.key) {
			return a.variant
		}
	}

	// Stage 3: token-presence fallback.
	return classifyTokens(norm)
}

func matchCatalog(norm string) models.Variant {
	for _, p := range catalog {
		for _, loc := range p.re.FindAllStringIndex(norm, -1) {
			if p.notFollowedBy != nil && p.notFollowedBy.MatchString(norm[loc[1]:]) {
				continue
			}
			return p.variant
		}
	}
	return models.VariantUnknown
}

// classifyTokens requires the brand token and a generation token to both
// be present. Qualifier tokens found in the title must form a complete
// known qualifier set: a lone "max" or a "pro plus" combination is
// rejected rather than guessed at.
func classifyTokens(norm string) models.Variant {
	tokens := strings.Fields(norm)
	var hasBrand bool
	gen := 0
	var hasPro, hasMax, hasPlus bool

	for _, tok := range tokens {
		for _, b := range brandTokens {
			if tok == b {
				hasBrand = true
			}
		}
		switch tok {
		case "pro":
			hasPro = true
		case "max":
			hasMax = true
		case "plus":
			hasPlus = true
		}
		if gen == 0 {
			if n, err := strconv.Atoi(tok); err == nil {
				for _, g := range generations {
					if n == g {
						gen = n
					}
				}
			}
		}
	}

	if !hasBrand || gen == 0 {
		return models.VariantUnknown
	}

	switch {
	case hasPro && hasMax && !hasPlus:
		return variantFor(gen, "pro max")
	case hasPro && !hasMax && !hasPlus:
		return variantFor(gen, "pro")
	case hasPlus && !hasPro && !hasMax:
		return variantFor(gen, "plus")
	case !hasPro && !hasMax && !hasPlus:
		return variantFor(gen, "")
	}
	return models.VariantUnknown
}

// FromURL extracts a variant from an "iphone-14-pro-max"-style path
// segment of a listing URL. This is a secondary signal for titles the
// primary classifier cannot place; it is only consulted when explicitly
// enabled in configuration.
func FromURL(rawURL string) models.Variant {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return models.VariantUnknown
	}
	m := urlSegment.FindStringSubmatch(strings.ToLower(parsed.Path))
	if m == nil {
		return models.VariantUnknown
	}
	gen, err := strconv.Atoi(m[1])
	if err != nil {
		return models.VariantUnknown
	}

	switch {
	case m[2] == "pro" && m[3] == "max":
		return variantFor(gen, "pro max")
	case m[2] == "pro" && m[3] == "":
		return variantFor(gen, "pro")
	case m[2] == "" && m[3] == "plus":
		return variantFor(gen, "plus")
	case m[2] == "" && m[3] == "":
		return variantFor(gen, "")
	}
	return models.VariantUnknown
}
