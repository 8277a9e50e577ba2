package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

//go:embed price_limits.json
var embeddedLimits embed.FS

// LoadPriceLimits loads the per-variant ceiling table:
// 1. external file named by PRICE_LIMITS_PATH, if set
// 2. embedded price_limits.json
// Unknown variant names in the table are a hard error so an operator typo
// doesn't silently disable a ceiling.
func LoadPriceLimits() (map[models.Variant]float64, error) {
	if path := os.Getenv("PRICE_LIMITS_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read price limits file %s: %w", path, err)
		}
		limits, err := parsePriceLimits(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price limits file %s: %w", path, err)
		}
		slog.Info("Loaded price limits from external file", "path", path, "variants", len(limits))
		return limits, nil
	}

	data, err := embeddedLimits.ReadFile("price_limits.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded price limits: %w", err)
	}
	limits, err := parsePriceLimits(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded price limits: %w", err)
	}
	slog.Info("Loaded price limits from embedded config", "variants", len(limits))
	return limits, nil
}

func parsePriceLimits(data []byte) (map[models.Variant]float64, error) {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := make(map[models.Variant]bool, len(models.AllVariants))
	for _, v := range models.AllVariants {
		known[v] = true
	}

	limits := make(map[models.Variant]float64, len(raw))
	for name, limit := range raw {
		variant := models.Variant(name)
		if !known[variant] {
			return nil, fmt.Errorf("price limit for unknown variant %q", name)
		}
		if limit <= 0 {
			return nil, fmt.Errorf("price limit for %q must be positive, got %v", name, limit)
		}
		limits[variant] = limit
	}
	if len(limits) == 0 {
		return nil, fmt.Errorf("price limit table is empty")
	}
	return limits, nil
}
