package processor

import (
	"context"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

// Fetcher provides raw listings and listing detail pages.
type Fetcher interface {
	FetchListings(ctx context.Context) ([]models.RawListing, error)
	FetchDescription(ctx context.Context, listingURL string) string
}

// Notifier delivers one match to the user.
type Notifier interface {
	Send(ctx context.Context, listing models.Listing) error
}

// Ledger is the durable set of already-notified listing URLs.
type Ledger interface {
	Has(url string) bool
	Record(url string) bool
	Persist() error
}
