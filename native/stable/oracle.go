package stable

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// PriceDecimals is the canonical decimal scale every sample is rescaled to.
	PriceDecimals uint8 = 6
	// PriceScale is 10^PriceDecimals.
	PriceScale uint64 = 1_000_000
	// MaxPriceAge bounds how old a sample may be before it is rejected as stale.
	MaxPriceAge = 300 * time.Second
	// MaxPriceConfidence is the default confidence ceiling (1% of scale).
	MaxPriceConfidence = PriceScale / 100
	// MinFeedCount and MaxFeedCount bound the feed set accepted by MedianPrice.
	MinFeedCount = 1
	MaxFeedCount = 3
)

// PriceSample is one observation produced by an external price feed. It is
// consumed for exactly one transition and never persisted.
type PriceSample struct {
	Value       uint64
	Decimals    uint8
	LastUpdated int64
	Confidence  uint64
}

// PriceFeed resolves the current sample for a configured reference feed.
type PriceFeed interface {
	Read() (PriceSample, error)
}

// FeedFunc adapts a plain function to the PriceFeed interface.
type FeedFunc func() (PriceSample, error)

func (f FeedFunc) Read() (PriceSample, error) { return f() }

// Standardize rescales the sample value from its native decimals to
// PriceDecimals by integer multiply or divide.
func Standardize(sample PriceSample) (uint64, error) {
	switch {
	case sample.Decimals == PriceDecimals:
		return sample.Value, nil
	case sample.Decimals > PriceDecimals:
		divisor, err := pow10(sample.Decimals - PriceDecimals)
		if err != nil {
			return 0, err
		}
		return checkedDiv(sample.Value, divisor)
	default:
		factor, err := pow10(PriceDecimals - sample.Decimals)
		if err != nil {
			return 0, err
		}
		return checkedMul(sample.Value, factor)
	}
}

// ValidateSample rejects non-positive, stale, or low-confidence samples. A
// non-positive maxAge disables the staleness check and a zero maxConfidence
// falls back to MaxPriceConfidence.
func ValidateSample(sample PriceSample, now time.Time, maxAge time.Duration, maxConfidence uint64) error {
	if sample.Value == 0 {
		return ErrInvalidOraclePrice
	}
	if maxAge > 0 {
		if now.Unix()-sample.LastUpdated > int64(maxAge/time.Second) {
			return ErrStaleOraclePrice
		}
	}
	if maxConfidence == 0 {
		maxConfidence = MaxPriceConfidence
	}
	if sample.Confidence > maxConfidence {
		return ErrInvalidOraclePrice
	}
	return nil
}

// MedianPrice reads every feed, drops samples that fail validation, and returns
// the middle surviving sample by sorted value. Individual feed failures are
// swallowed; only a fully empty result surfaces as ErrInvalidOraclePrice.
func MedianPrice(now time.Time, maxAge time.Duration, maxConfidence uint64, feeds ...PriceFeed) (PriceSample, error) {
	if len(feeds) < MinFeedCount || len(feeds) > MaxFeedCount {
		return PriceSample{}, ErrInvalidOraclePrice
	}
	samples := make([]PriceSample, 0, len(feeds))
	for _, feed := range feeds {
		if feed == nil {
			continue
		}
		sample, err := feed.Read()
		if err != nil {
			continue
		}
		if err := ValidateSample(sample, now, maxAge, maxConfidence); err != nil {
			continue
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return PriceSample{}, ErrInvalidOraclePrice
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Value < samples[j].Value
	})
	return samples[len(samples)/2], nil
}

// SafePrice returns the standardized price shifted by the sample confidence:
// the upper bound adds it, the lower bound subtracts it. Boundary overflow and
// underflow fail with ErrMathOverflow.
func SafePrice(sample PriceSample, upperBound bool) (uint64, error) {
	base, err := Standardize(sample)
	if err != nil {
		return 0, err
	}
	if upperBound {
		return checkedAdd(base, sample.Confidence)
	}
	return checkedSub(base, sample.Confidence)
}

// ManualFeed is an in-memory feed used for tests and manual overrides during
// incident response.
type ManualFeed struct {
	mu     sync.RWMutex
	sample PriceSample
	set    bool
}

// NewManualFeed constructs an empty manual feed.
func NewManualFeed() *ManualFeed {
	return &ManualFeed{}
}

// Set stores the sample returned by subsequent reads.
func (m *ManualFeed) Set(sample PriceSample) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.sample = sample
	m.set = true
	m.mu.Unlock()
}

// Read returns the stored sample.
func (m *ManualFeed) Read() (PriceSample, error) {
	if m == nil {
		return PriceSample{}, fmt.Errorf("stable: manual feed not configured")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return PriceSample{}, fmt.Errorf("stable: manual feed has no sample")
	}
	return m.sample, nil
}

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFeed fetches samples from a JSON price endpoint.
type HTTPFeed struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
}

// NewHTTPFeed constructs an HTTP feed adapter. When the client is nil
// http.DefaultClient is used; the API key is optional and only attached to the
// request headers when supplied.
func NewHTTPFeed(client HTTPDoer, endpoint, apiKey string) *HTTPFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{client: client, endpoint: strings.TrimSpace(endpoint), apiKey: strings.TrimSpace(apiKey)}
}

func (f *HTTPFeed) Read() (PriceSample, error) {
	if f == nil || f.endpoint == "" {
		return PriceSample{}, fmt.Errorf("stable: http feed not configured")
	}
	req, err := http.NewRequest(http.MethodGet, f.endpoint, nil)
	if err != nil {
		return PriceSample{}, err
	}
	if f.apiKey != "" {
		req.Header.Set("x-api-key", f.apiKey)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return PriceSample{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return PriceSample{}, fmt.Errorf("stable: http feed status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload struct {
		Value       uint64 `json:"value"`
		Decimals    uint8  `json:"decimals"`
		LastUpdated int64  `json:"lastUpdated"`
		Confidence  uint64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return PriceSample{}, fmt.Errorf("stable: http feed decode: %w", err)
	}
	if payload.Value == 0 {
		return PriceSample{}, fmt.Errorf("stable: http feed returned empty price")
	}
	sample := PriceSample{
		Value:       payload.Value,
		Decimals:    payload.Decimals,
		LastUpdated: payload.LastUpdated,
		Confidence:  payload.Confidence,
	}
	if sample.Decimals == 0 {
		sample.Decimals = PriceDecimals
	}
	if sample.LastUpdated == 0 {
		sample.LastUpdated = time.Now().UTC().Unix()
	}
	return sample, nil
}
