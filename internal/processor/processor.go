// Package processor runs the listing pipeline: fetch, classify, filter
// by price, dedupe against the ledger, and notify.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dyli/olx-iphone-bot/internal/classifier"
	"github.com/dyli/olx-iphone-bot/internal/config"
	"github.com/dyli/olx-iphone-bot/internal/models"
	"github.com/dyli/olx-iphone-bot/internal/pricing"
)

type Processor struct {
	fetcher  Fetcher
	notifier Notifier
	ledger   Ledger
	policy   *pricing.Policy
	config   *config.Config
}

func New(fetcher Fetcher, notifier Notifier, ledger Ledger, policy *pricing.Policy, cfg *config.Config) *Processor {
	return &Processor{
		fetcher:  fetcher,
		notifier: notifier,
		ledger:   ledger,
		policy:   policy,
		config:   cfg,
	}
}

// Run executes one full cycle and returns the listings that were
// notified. A cycle with zero matches is a normal outcome. Per-listing
// failures are logged and skipped so one bad listing never poisons the
// rest of the batch.
func (p *Processor) Run(ctx context.Context) ([]models.Listing, error) {
	rawListings, err := p.fetcher.FetchListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cycle failed: %w", err)
	}
	if len(rawListings) == 0 {
		slog.Info("No listings on results page this cycle")
		return nil, nil
	}

	var notified []models.Listing
	dirty := false
	// Guards against the same URL appearing twice within one page.
	seen := make(map[string]struct{})

	for _, raw := range rawListings {
		if len(notified) >= p.config.MaxListingsPerCycle {
			slog.Info("Reached per-cycle notification cap", "cap", p.config.MaxListingsPerCycle)
			break
		}
		if err := ctx.Err(); err != nil {
			return notified, err
		}

		listing, ok := p.evaluate(raw)
		if !ok {
			continue
		}

		if _, dup := seen[listing.URL]; dup {
			continue
		}
		seen[listing.URL] = struct{}{}
		if p.ledger.Has(listing.URL) {
			continue
		}

		if p.config.IncludeDescription {
			listing.Description = p.fetcher.FetchDescription(ctx, listing.URL)
		}

		if err := p.notifier.Send(ctx, listing); err != nil {
			// Leave the URL unrecorded so the next cycle retries it.
			slog.Error("Failed to send notification", "url", listing.URL, "error", err)
			continue
		}

		p.ledger.Record(listing.URL)
		dirty = true
		if p.config.PersistEachDispatch {
			if err := p.ledger.Persist(); err != nil {
				slog.Error("Failed to persist notification history", "error", err)
			} else {
				dirty = false
			}
		}
		notified = append(notified, listing)
	}

	if dirty {
		if err := p.ledger.Persist(); err != nil {
			slog.Error("Failed to persist notification history", "error", err)
		}
	}

	slog.Info("Cycle complete", "scanned", len(rawListings), "notified", len(notified))
	return notified, nil
}

// evaluate turns one raw listing into a notifiable Listing, or reports
// that it should be skipped.
func (p *Processor) evaluate(raw models.RawListing) (models.Listing, bool) {
	price, ok := pricing.ExtractPrice(raw.PriceText)
	if !ok {
		slog.Debug("Skipping listing without a readable price", "title", raw.Title)
		return models.Listing{}, false
	}

	variant := classifier.Classify(raw.Title)
	if !variant.Known() && p.config.ClassifyFromURL {
		variant = classifier.FromURL(raw.URL)
	}

	decision := p.policy.Evaluate(variant, price)
	if decision != pricing.Accepted {
		slog.Debug("Listing filtered out", "title", raw.Title, "variant", variant.String(), "price", price, "decision", decision.String())
		return models.Listing{}, false
	}

	return models.Listing{
		Variant: variant,
		Price:   price,
		URL:     raw.URL,
		Title:   raw.Title,
	}, true
}
