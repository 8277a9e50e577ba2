package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

// Config holds everything loaded at startup. Immutable for the lifetime
// of one run.
type Config struct {
	// Telegram
	TelegramEnabled  bool
	TelegramBotToken string `validate:"required_if=TelegramEnabled true"`
	TelegramChatID   string `validate:"required_if=TelegramEnabled true"`

	// Notification formatting
	MaxMessageLength   int `validate:"gt=0"`
	IncludeDescription bool

	// Policy knobs. PermissiveUnknown accepts unclassified listings
	// priced at or below ANY configured ceiling instead of rejecting
	// them; off by default. ClassifyFromURL enables the URL-segment
	// fallback when title classification fails.
	PermissiveUnknown bool
	ClassifyFromURL   bool

	// Ledger
	LedgerPath string `validate:"required"`
	// PersistEachDispatch flushes the ledger after every successful
	// notification (durable, default). When false, the ledger is
	// persisted once at the end of each cycle.
	PersistEachDispatch bool

	// Pipeline
	MaxListingsPerCycle int           `validate:"gt=0"`
	CycleDelayMin       time.Duration `validate:"gt=0"`
	CycleDelayMax       time.Duration `validate:"gtefield=CycleDelayMin"`
	ErrorBackoff        time.Duration `validate:"gt=0"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	// RequestDelay spaces consecutive HTTP requests to the source site.
	// Independent of the inter-cycle delay.
	RequestDelay time.Duration `validate:"gte=0"`

	// Search filters
	SearchBaseURL    string `validate:"required,url"`
	SearchQuery      string `validate:"required"`
	SearchDistanceKM int    `validate:"gte=0"`
	SearchOrder      string
	SearchConditions []string
	PhoneModelSlugs  []string

	// PriceLimits maps each catalog variant to its ceiling in PLN.
	PriceLimits map[models.Variant]float64 `validate:"required,min=1,dive,gt=0"`
}

// Load reads configuration from the environment and the price-limit
// table. It fails hard on anything that would make a run meaningless:
// notification enabled without credentials, or an unusable price table.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramEnabled:     envBool("TELEGRAM_ENABLED", false),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      os.Getenv("TELEGRAM_CHAT_ID"),
		MaxMessageLength:    envInt("MAX_MESSAGE_LENGTH", 4000),
		IncludeDescription:  envBool("INCLUDE_DESCRIPTION", true),
		PermissiveUnknown:   envBool("PERMISSIVE_UNKNOWN", false),
		ClassifyFromURL:     envBool("CLASSIFY_FROM_URL", false),
		LedgerPath:          envString("LEDGER_PATH", "notified_listings.txt"),
		PersistEachDispatch: envBool("LEDGER_PERSIST_EACH", true),
		MaxListingsPerCycle: envInt("MAX_LISTINGS_PER_CYCLE", 20),
		SearchBaseURL:       envString("SEARCH_BASE_URL", "https://www.olx.pl/elektronika/telefony/warszawa/"),
		SearchQuery:         envString("SEARCH_QUERY", "iphone"),
		SearchDistanceKM:    envInt("SEARCH_DISTANCE_KM", 30),
		SearchOrder:         envString("SEARCH_ORDER", "created_at:desc"),
	}

	var err error
	if cfg.CycleDelayMin, err = envDuration("CYCLE_DELAY_MIN", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.CycleDelayMax, err = envDuration("CYCLE_DELAY_MAX", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ErrorBackoff, err = envDuration("ERROR_BACKOFF", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestDelay, err = envDuration("REQUEST_DELAY", 2*time.Second); err != nil {
		return nil, err
	}

	cfg.SearchConditions = envList("SEARCH_CONDITIONS", []string{"used", "damaged", "new"})
	cfg.PhoneModelSlugs = envList("PHONE_MODEL_SLUGS", defaultPhoneModelSlugs())

	limits, err := LoadPriceLimits()
	if err != nil {
		return nil, err
	}
	cfg.PriceLimits = limits

	if cfg.TelegramEnabled && (cfg.TelegramBotToken == "" || cfg.TelegramChatID == "") {
		return nil, fmt.Errorf("TELEGRAM_ENABLED is set but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is missing")
	}
	if !cfg.TelegramEnabled {
		// Credentials may still sit in the environment; blank them so a
		// disabled config can never reach the Bot API.
		cfg.TelegramBotToken = ""
		cfg.TelegramChatID = ""
		slog.Warn("Telegram notifications disabled, matches will only be logged")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultPhoneModelSlugs lists the OLX filter_enum_phonemodel values the
// search is narrowed to. These are OLX's URL slugs, not classifier output.
func defaultPhoneModelSlugs() []string {
	var slugs []string
	for _, v := range models.AllVariants {
		slug := strings.ToLower(string(v))
		slug = strings.ReplaceAll(slug, " ", "-")
		slugs = append(slugs, slug)
	}
	return slugs
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean env value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return parsed
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer env value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return parsed
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
