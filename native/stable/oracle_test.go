package stable

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func freshSample(value uint64) PriceSample {
	return PriceSample{Value: value, Decimals: PriceDecimals, LastUpdated: time.Now().UTC().Unix()}
}

func TestStandardizeRescales(t *testing.T) {
	got, err := Standardize(PriceSample{Value: 1_000_000_00, Decimals: 8})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if got != 1_000_000 {
		t.Fatalf("expected downscale to 1000000, got %d", got)
	}
	got, err = Standardize(PriceSample{Value: 1_000, Decimals: 3})
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	if got != 1_000_000 {
		t.Fatalf("expected upscale to 1000000, got %d", got)
	}
	got, err = Standardize(freshSample(42))
	if err != nil || got != 42 {
		t.Fatalf("expected identity rescale, got %d %v", got, err)
	}
}

func TestValidateSampleRejectsStaleAndInvalid(t *testing.T) {
	now := time.Now().UTC()
	if err := ValidateSample(PriceSample{Value: 0, LastUpdated: now.Unix()}, now, MaxPriceAge, 0); !errors.Is(err, ErrInvalidOraclePrice) {
		t.Fatalf("expected invalid price for zero value, got %v", err)
	}
	stale := PriceSample{Value: 100, Decimals: PriceDecimals, LastUpdated: now.Add(-301 * time.Second).Unix()}
	if err := ValidateSample(stale, now, MaxPriceAge, 0); !errors.Is(err, ErrStaleOraclePrice) {
		t.Fatalf("expected stale price, got %v", err)
	}
	noisy := freshSample(1_000_000)
	noisy.Confidence = MaxPriceConfidence + 1
	if err := ValidateSample(noisy, now, MaxPriceAge, 0); !errors.Is(err, ErrInvalidOraclePrice) {
		t.Fatalf("expected low-confidence rejection, got %v", err)
	}
	if err := ValidateSample(freshSample(1_000_000), now, MaxPriceAge, 0); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}
}

func TestMedianPriceDropsBadSamples(t *testing.T) {
	now := time.Now().UTC()
	good := FeedFunc(func() (PriceSample, error) { return freshSample(1_000_000), nil })
	high := FeedFunc(func() (PriceSample, error) { return freshSample(1_200_000), nil })
	broken := FeedFunc(func() (PriceSample, error) { return PriceSample{}, errors.New("feed down") })

	sample, err := MedianPrice(now, MaxPriceAge, 0, good, high, broken)
	if err != nil {
		t.Fatalf("median: %v", err)
	}
	if sample.Value != 1_200_000 {
		t.Fatalf("expected upper survivor of two, got %d", sample.Value)
	}

	low := FeedFunc(func() (PriceSample, error) { return freshSample(900_000), nil })
	sample, err = MedianPrice(now, MaxPriceAge, 0, high, low, good)
	if err != nil {
		t.Fatalf("median: %v", err)
	}
	if sample.Value != 1_000_000 {
		t.Fatalf("expected middle of three, got %d", sample.Value)
	}

	if _, err := MedianPrice(now, MaxPriceAge, 0, broken); !errors.Is(err, ErrInvalidOraclePrice) {
		t.Fatalf("expected failure with zero survivors, got %v", err)
	}
	if _, err := MedianPrice(now, MaxPriceAge, 0); !errors.Is(err, ErrInvalidOraclePrice) {
		t.Fatalf("expected failure with no feeds, got %v", err)
	}
}

func TestSafePriceBounds(t *testing.T) {
	sample := freshSample(1_000_000)
	sample.Confidence = 5_000
	upper, err := SafePrice(sample, true)
	if err != nil || upper != 1_005_000 {
		t.Fatalf("unexpected upper bound: %d %v", upper, err)
	}
	lower, err := SafePrice(sample, false)
	if err != nil || lower != 995_000 {
		t.Fatalf("unexpected lower bound: %d %v", lower, err)
	}
}

func TestManualFeedRoundTrip(t *testing.T) {
	feed := NewManualFeed()
	if _, err := feed.Read(); err == nil {
		t.Fatalf("expected error before first sample")
	}
	feed.Set(freshSample(750_000))
	sample, err := feed.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if sample.Value != 750_000 {
		t.Fatalf("unexpected value: %d", sample.Value)
	}
}

func TestHTTPFeedReadsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("missing api key header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value":       1_250_000,
			"decimals":    6,
			"lastUpdated": time.Now().UTC().Unix(),
			"confidence":  1_000,
		})
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.Client(), srv.URL, "secret")
	sample, err := feed.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if sample.Value != 1_250_000 || sample.Confidence != 1_000 {
		t.Fatalf("unexpected sample: %+v", sample)
	}
}

func TestHTTPFeedRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oracle offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.Client(), srv.URL, "")
	if _, err := feed.Read(); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
