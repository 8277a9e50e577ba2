package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/dyli/olx-iphone-bot/internal/config"
	"github.com/dyli/olx-iphone-bot/internal/models"
	"github.com/dyli/olx-iphone-bot/internal/util"
)

// NoDescription is the sentinel returned when a listing's long-form
// description cannot be fetched or extracted.
const NoDescription = "No description available"

const maxDescriptionRunes = 300

// userAgents are rotated per request to avoid trivial blocking.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// Client fetches and parses OLX search results and listing detail
// pages. Zero extracted listings is a normal degraded outcome (selector
// drift, empty results), not an error.
type Client struct {
	httpClient *http.Client
	config     *config.Config
	selectors  SelectorConfig
	limiter    *rate.Limiter
	baseURL    string
}

func New(cfg *config.Config, selectors SelectorConfig) *Client {
	return NewWithBaseURL(cfg, selectors, cfg.SearchBaseURL)
}

// NewWithBaseURL overrides the search base URL; used by tests to point
// the client at a local server.
func NewWithBaseURL(cfg *config.Config, selectors SelectorConfig, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		config:     cfg,
		selectors:  selectors,
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		baseURL:    baseURL,
	}
}

// BuildSearchURL assembles the search results URL from the configured
// filters.
func (c *Client) BuildSearchURL() string {
	searchURL := strings.TrimSuffix(c.baseURL, "/") + "/q-" + url.PathEscape(c.config.SearchQuery) + "/"

	params := url.Values{}
	if c.config.SearchDistanceKM > 0 {
		params.Set("search[dist]", fmt.Sprintf("%d", c.config.SearchDistanceKM))
	}
	if c.config.SearchOrder != "" {
		params.Set("search[order]", c.config.SearchOrder)
	}
	for i, condition := range c.config.SearchConditions {
		params.Set(fmt.Sprintf("search[filter_enum_state][%d]", i), condition)
	}
	for i, slug := range c.config.PhoneModelSlugs {
		params.Set(fmt.Sprintf("search[filter_enum_phonemodel][%d]", i), slug)
	}

	if len(params) > 0 {
		searchURL += "?" + params.Encode()
	}
	return searchURL
}

func (c *Client) FetchListings(ctx context.Context) ([]models.RawListing, error) {
	searchURL := c.BuildSearchURL()
	slog.Info("Fetching search results page", "url", searchURL)

	var doc *goquery.Document
	err := util.RetryWithBackoff(ctx, 3, func(attempt int) error {
		var fetchErr error
		doc, fetchErr = c.fetchDocument(ctx, searchURL)
		if fetchErr != nil {
			slog.Warn("Search page fetch failed", "attempt", attempt+1, "error", fetchErr)
		}
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results page: %w", err)
	}

	items := firstNonEmpty(doc.Selection, c.selectors.SearchResults.Items)
	if items == nil {
		// Selector drift produces zero results; the next cycle may
		// recover, so this is degraded, not fatal.
		slog.Warn("No listing containers found, page structure may have changed", "url", searchURL)
		return nil, nil
	}

	var listings []models.RawListing
	items.Each(func(i int, s *goquery.Selection) {
		raw, ok := c.extractListing(s)
		if !ok {
			return
		}
		listings = append(listings, raw)
	})

	slog.Info("Extracted raw listings", "count", len(listings))
	return listings, nil
}

func (c *Client) extractListing(s *goquery.Selection) (models.RawListing, bool) {
	var raw models.RawListing

	titleSel := firstNonEmpty(s, c.selectors.SearchResults.Title)
	if titleSel == nil {
		return raw, false
	}
	raw.Title = strings.TrimSpace(titleSel.First().Text())
	if raw.Title == "" {
		return raw, false
	}

	if priceSel := firstNonEmpty(s, c.selectors.SearchResults.Price); priceSel != nil {
		raw.PriceText = strings.TrimSpace(priceSel.First().Text())
	}

	linkSel := firstNonEmpty(s, c.selectors.SearchResults.Link)
	if linkSel == nil {
		return raw, false
	}
	href, exists := linkSel.First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return raw, false
	}
	normalized, err := util.NormalizeListingURL(strings.TrimSpace(href))
	if err != nil {
		slog.Warn("Skipping listing with unparsable URL", "href", href, "error", err)
		return raw, false
	}
	raw.URL = normalized
	return raw, true
}

var (
	cssDeclarations = regexp.MustCompile(`(font-size|line-height|margin|padding|color|text-transform):[^;]*;?`)
	cssClassTokens  = regexp.MustCompile(`\.css-[a-zA-Z0-9_-]+`)
	cssBlocks       = regexp.MustCompile(`\{[^}]*\}`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	cssLeftovers    = regexp.MustCompile(`(css-|font-size)`)
)

func (c *Client) FetchDescription(ctx context.Context, listingURL string) string {
	doc, err := c.fetchDocument(ctx, listingURL)
	if err != nil {
		slog.Warn("Failed to fetch listing detail page", "url", listingURL, "error", err)
		return NoDescription
	}

	descSel := firstNonEmpty(doc.Selection, c.selectors.ListingDetails.Description)
	if descSel == nil {
		return NoDescription
	}

	// OLX interleaves styling junk with the text; scrub it before use.
	descSel.Find("script, style").Remove()
	description := descSel.First().Text()
	description = cssDeclarations.ReplaceAllString(description, "")
	description = cssClassTokens.ReplaceAllString(description, "")
	description = cssBlocks.ReplaceAllString(description, "")
	description = strings.TrimSpace(whitespaceRuns.ReplaceAllString(description, " "))

	if len(description) <= 20 || cssLeftovers.MatchString(description) {
		return NoDescription
	}

	runes := []rune(description)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes]) + "..."
	}
	return description
}

func (c *Client) fetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %s: %w", urlStr, err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en;q=0.8")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}

// firstNonEmpty tries each selector in order within s and returns the
// first non-empty selection, or nil when no strategy matches.
func firstNonEmpty(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}
