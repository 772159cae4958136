package events

import (
	"strconv"
	"strings"
)

const (
	// TypeStableInitialized is emitted when a new issuance record is created.
	TypeStableInitialized = "stable.initialized"
	// TypeStableMinted is emitted after a successful mint transition.
	TypeStableMinted = "stable.minted"
	// TypeStableRedeemed is emitted after a successful redeem transition.
	TypeStableRedeemed = "stable.redeemed"
	// TypeStableSettingsUpdated is emitted after an authority settings change.
	TypeStableSettingsUpdated = "stable.settings_updated"
	// TypeStableMetadataUpdated is emitted after an authority metadata change.
	TypeStableMetadataUpdated = "stable.metadata_updated"
)

type StableInitialized struct {
	EventID      string
	StablecoinID string
	VaultID      string
	Authority    string
	Name         string
	Symbol       string
	Currency     string
}

func (StableInitialized) EventType() string { return TypeStableInitialized }

func (e StableInitialized) Attributes() map[string]string {
	return map[string]string{
		"eventId":      e.EventID,
		"stablecoinId": e.StablecoinID,
		"vaultId":      e.VaultID,
		"authority":    strings.TrimSpace(e.Authority),
		"name":         strings.TrimSpace(e.Name),
		"symbol":       strings.TrimSpace(e.Symbol),
		"currency":     strings.TrimSpace(e.Currency),
	}
}

type StableMinted struct {
	EventID      string
	StablecoinID string
	Caller       string
	Amount       uint64
	Fee          uint64
	Collateral   uint64
	Supply       uint64
	Price        uint64
}

func (StableMinted) EventType() string { return TypeStableMinted }

func (e StableMinted) Attributes() map[string]string {
	return map[string]string{
		"eventId":      e.EventID,
		"stablecoinId": e.StablecoinID,
		"caller":       strings.TrimSpace(e.Caller),
		"amount":       strconv.FormatUint(e.Amount, 10),
		"fee":          strconv.FormatUint(e.Fee, 10),
		"collateral":   strconv.FormatUint(e.Collateral, 10),
		"supply":       strconv.FormatUint(e.Supply, 10),
		"price":        strconv.FormatUint(e.Price, 10),
	}
}

type StableRedeemed struct {
	EventID      string
	StablecoinID string
	Caller       string
	Amount       uint64
	Fee          uint64
	Collateral   uint64
	Supply       uint64
	Price        uint64
}

func (StableRedeemed) EventType() string { return TypeStableRedeemed }

func (e StableRedeemed) Attributes() map[string]string {
	return map[string]string{
		"eventId":      e.EventID,
		"stablecoinId": e.StablecoinID,
		"caller":       strings.TrimSpace(e.Caller),
		"amount":       strconv.FormatUint(e.Amount, 10),
		"fee":          strconv.FormatUint(e.Fee, 10),
		"collateral":   strconv.FormatUint(e.Collateral, 10),
		"supply":       strconv.FormatUint(e.Supply, 10),
		"price":        strconv.FormatUint(e.Price, 10),
	}
}

// StableSettings is the settings snapshot carried on update events.
type StableSettings struct {
	MinRatioBps  uint16
	FeeBps       uint16
	MaxSupply    uint64
	MintPaused   bool
	RedeemPaused bool
}

type StableSettingsUpdated struct {
	EventID      string
	StablecoinID string
	Authority    string
	Before       StableSettings
	After        StableSettings
}

func (StableSettingsUpdated) EventType() string { return TypeStableSettingsUpdated }

func (e StableSettingsUpdated) Attributes() map[string]string {
	attrs := map[string]string{
		"eventId":      e.EventID,
		"stablecoinId": e.StablecoinID,
		"authority":    strings.TrimSpace(e.Authority),
	}
	addSettings := func(prefix string, s StableSettings) {
		attrs[prefix+"MinRatioBps"] = strconv.FormatUint(uint64(s.MinRatioBps), 10)
		attrs[prefix+"FeeBps"] = strconv.FormatUint(uint64(s.FeeBps), 10)
		attrs[prefix+"MaxSupply"] = strconv.FormatUint(s.MaxSupply, 10)
		attrs[prefix+"MintPaused"] = strconv.FormatBool(s.MintPaused)
		attrs[prefix+"RedeemPaused"] = strconv.FormatBool(s.RedeemPaused)
	}
	addSettings("before", e.Before)
	addSettings("after", e.After)
	return attrs
}

type StableMetadataUpdated struct {
	EventID      string
	StablecoinID string
	Authority    string
	Name         string
	Symbol       string
	Currency     string
}

func (StableMetadataUpdated) EventType() string { return TypeStableMetadataUpdated }

func (e StableMetadataUpdated) Attributes() map[string]string {
	return map[string]string{
		"eventId":      e.EventID,
		"stablecoinId": e.StablecoinID,
		"authority":    strings.TrimSpace(e.Authority),
		"name":         strings.TrimSpace(e.Name),
		"symbol":       strings.TrimSpace(e.Symbol),
		"currency":     strings.TrimSpace(e.Currency),
	}
}
