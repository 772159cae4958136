package stable

import (
	"fmt"
	"strings"
	"time"
)

// FeedMode selects how a configured price feed sources samples.
const (
	FeedModeManual = "manual"
	FeedModeHTTP   = "http"
)

// FeedConfig models one price feed source parsed from configuration.
type FeedConfig struct {
	Name   string `toml:"Name"`
	Ref    string `toml:"Ref"`
	Mode   string `toml:"Mode"`
	URL    string `toml:"URL"`
	APIKey string `toml:"APIKey"`
}

// Config aggregates the issuance engine parameters sourced from configuration.
type Config struct {
	MaxPriceAgeSeconds    uint64       `toml:"MaxPriceAgeSeconds"`
	MaxPriceConfidence    uint64       `toml:"MaxPriceConfidence"`
	MinTransactionAmount  uint64       `toml:"MinTransactionAmount"`
	MaxTransactionAmount  uint64       `toml:"MaxTransactionAmount"`
	MinCollateralRatioBps uint16       `toml:"MinCollateralRatioBps"`
	MaxCollateralRatioBps uint16       `toml:"MaxCollateralRatioBps"`
	MaxFeeBps             uint16       `toml:"MaxFeeBps"`
	Feeds                 []FeedConfig `toml:"Feeds"`
}

// Normalise fills unset fields with the package defaults, trims feed entries,
// and drops feeds with no reference.
func (cfg Config) Normalise() Config {
	if cfg.MaxPriceAgeSeconds == 0 {
		cfg.MaxPriceAgeSeconds = uint64(MaxPriceAge / time.Second)
	}
	if cfg.MaxPriceConfidence == 0 {
		cfg.MaxPriceConfidence = MaxPriceConfidence
	}
	limits := Limits{
		MinTransactionAmount:  cfg.MinTransactionAmount,
		MaxTransactionAmount:  cfg.MaxTransactionAmount,
		MinCollateralRatioBps: cfg.MinCollateralRatioBps,
		MaxCollateralRatioBps: cfg.MaxCollateralRatioBps,
		MaxFeeBps:             cfg.MaxFeeBps,
	}.Normalise()
	cfg.MinTransactionAmount = limits.MinTransactionAmount
	cfg.MaxTransactionAmount = limits.MaxTransactionAmount
	cfg.MinCollateralRatioBps = limits.MinCollateralRatioBps
	cfg.MaxCollateralRatioBps = limits.MaxCollateralRatioBps
	cfg.MaxFeeBps = limits.MaxFeeBps

	feeds := make([]FeedConfig, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		feed.Name = strings.TrimSpace(feed.Name)
		feed.Ref = strings.TrimSpace(feed.Ref)
		feed.Mode = strings.ToLower(strings.TrimSpace(feed.Mode))
		feed.URL = strings.TrimSpace(feed.URL)
		feed.APIKey = strings.TrimSpace(feed.APIKey)
		if feed.Ref == "" {
			continue
		}
		if feed.Mode == "" {
			feed.Mode = FeedModeManual
		}
		feeds = append(feeds, feed)
	}
	cfg.Feeds = feeds
	return cfg
}

// Limits derives the transaction bounds from the configuration.
func (cfg Config) Limits() Limits {
	return Limits{
		MinTransactionAmount:  cfg.MinTransactionAmount,
		MaxTransactionAmount:  cfg.MaxTransactionAmount,
		MinCollateralRatioBps: cfg.MinCollateralRatioBps,
		MaxCollateralRatioBps: cfg.MaxCollateralRatioBps,
		MaxFeeBps:             cfg.MaxFeeBps,
	}.Normalise()
}

// MaxPriceAge derives the staleness window from the configuration.
func (cfg Config) MaxPriceAge() time.Duration {
	if cfg.MaxPriceAgeSeconds == 0 {
		return MaxPriceAge
	}
	return time.Duration(cfg.MaxPriceAgeSeconds) * time.Second
}

// BuildFeed constructs the price feed described by the entry.
func (fc FeedConfig) BuildFeed() (PriceFeed, error) {
	switch fc.Mode {
	case FeedModeManual, "":
		return NewManualFeed(), nil
	case FeedModeHTTP:
		if fc.URL == "" {
			return nil, fmt.Errorf("stable: feed %s: http mode requires a URL", fc.Ref)
		}
		return NewHTTPFeed(nil, fc.URL, fc.APIKey), nil
	default:
		return nil, fmt.Errorf("stable: feed %s: unknown mode %q", fc.Ref, fc.Mode)
	}
}
