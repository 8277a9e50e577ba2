package util

import (
	"net/url"
	"strings"
)

const olxBaseURL = "https://www.olx.pl"

// olxDomains lists hosts that get canonicalized to www.olx.pl.
var olxDomains = []string{
	"olx.pl",
	"www.olx.pl",
	"m.olx.pl",
}

func isOLXDomain(host string) bool {
	for _, d := range olxDomains {
		if host == d {
			return true
		}
	}
	return false
}

// NormalizeListingURL canonicalizes an OLX listing URL so the same offer
// always produces the same ledger key: relative hrefs are resolved
// against www.olx.pl, the scheme is forced to https, mobile and bare
// hosts collapse to www.olx.pl, and tracking query parameters are
// stripped. Non-OLX URLs are returned unchanged.
func NormalizeListingURL(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = olxBaseURL + rawURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}

	if !isOLXDomain(parsedURL.Hostname()) {
		return rawURL, nil
	}

	parsedURL.Scheme = "https"
	parsedURL.Host = "www.olx.pl"
	parsedURL.Fragment = ""

	queryParams := parsedURL.Query()
	trackingParams := []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "reason", "bs", "sliver_touchpoint"}
	for _, param := range trackingParams {
		if queryParams.Has(param) {
			queryParams.Del(param)
		}
	}
	parsedURL.RawQuery = queryParams.Encode()
	return parsedURL.String(), nil
}
