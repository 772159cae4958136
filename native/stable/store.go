package stable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"stablefun/storage"
)

// Stored shapes keep timestamps unsigned because RLP has no signed integer
// encoding. Negative unix times are clamped to zero on write.

type storedStablecoin struct {
	ID             string
	Authority      string
	Name           string
	Symbol         string
	TargetCurrency string
	TokenMint      string
	CollateralMint string
	PriceFeed      string
	VaultID        string
	CurrentSupply  uint64
	MinRatioBps    uint16
	FeeBps         uint16
	MaxSupply      uint64
	MintPaused     bool
	RedeemPaused   bool
	TotalMinted    uint64
	TotalBurned    uint64
	TotalFees      uint64
	CreatedAt      uint64
	LastUpdated    uint64
}

type storedVault struct {
	ID                 string
	StablecoinID       string
	CollateralAccount  string
	TotalCollateral    uint64
	TotalValueLocked   uint64
	CurrentRatioBps    uint16
	LastDepositTime    uint64
	LastWithdrawalTime uint64
	DepositCount       uint32
	WithdrawalCount    uint32
}

type registryEntry struct {
	ID        string
	Symbol    string
	CreatedAt uint64
}

// Store persists issuance and vault records in a key-value database.
type Store struct {
	db storage.Database
}

// NewStore constructs a Store backed by the provided database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func sanitizeUnix(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

// PutStablecoin writes the issuance record, registering it in the creation
// index on first insert.
func (s *Store) PutStablecoin(coin *Stablecoin) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("stable: store not initialised")
	}
	if coin == nil {
		return fmt.Errorf("stable: stablecoin must not be nil")
	}
	id := strings.TrimSpace(coin.ID)
	if id == "" {
		return fmt.Errorf("stable: stablecoin id required")
	}
	_, existed, err := s.GetStablecoin(id)
	if err != nil {
		return err
	}
	stored := storedStablecoin{
		ID:             id,
		Authority:      string(coin.Authority),
		Name:           coin.Name,
		Symbol:         coin.Symbol,
		TargetCurrency: coin.TargetCurrency,
		TokenMint:      string(coin.TokenMint),
		CollateralMint: string(coin.CollateralMint),
		PriceFeed:      string(coin.PriceFeed),
		VaultID:        coin.VaultID,
		CurrentSupply:  coin.CurrentSupply,
		MinRatioBps:    coin.Settings.MinCollateralRatioBps,
		FeeBps:         coin.Settings.FeeBps,
		MaxSupply:      coin.Settings.MaxSupply,
		MintPaused:     coin.Settings.MintPaused,
		RedeemPaused:   coin.Settings.RedeemPaused,
		TotalMinted:    coin.Stats.TotalMinted,
		TotalBurned:    coin.Stats.TotalBurned,
		TotalFees:      coin.Stats.TotalFees,
		CreatedAt:      sanitizeUnix(coin.CreatedAt),
		LastUpdated:    sanitizeUnix(coin.LastUpdated),
	}
	encoded, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return err
	}
	if err := s.db.Put(stablecoinKey(id), encoded); err != nil {
		return err
	}
	if existed {
		return nil
	}
	return s.appendRegistry(registryEntry{ID: id, Symbol: coin.Symbol, CreatedAt: stored.CreatedAt})
}

// GetStablecoin retrieves an issuance record by identifier.
func (s *Store) GetStablecoin(id string) (*Stablecoin, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("stable: store not initialised")
	}
	raw, err := s.db.Get(stablecoinKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedStablecoin
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("stable: decode stablecoin %s: %w", id, err)
	}
	coin := &Stablecoin{
		ID:             stored.ID,
		Authority:      Ref(stored.Authority),
		Name:           stored.Name,
		Symbol:         stored.Symbol,
		TargetCurrency: stored.TargetCurrency,
		TokenMint:      Ref(stored.TokenMint),
		CollateralMint: Ref(stored.CollateralMint),
		PriceFeed:      Ref(stored.PriceFeed),
		VaultID:        stored.VaultID,
		CurrentSupply:  stored.CurrentSupply,
		Settings: Settings{
			MinCollateralRatioBps: stored.MinRatioBps,
			FeeBps:                stored.FeeBps,
			MaxSupply:             stored.MaxSupply,
			MintPaused:            stored.MintPaused,
			RedeemPaused:          stored.RedeemPaused,
		},
		Stats: Stats{
			TotalMinted: stored.TotalMinted,
			TotalBurned: stored.TotalBurned,
			TotalFees:   stored.TotalFees,
		},
		CreatedAt:   int64(stored.CreatedAt),
		LastUpdated: int64(stored.LastUpdated),
	}
	return coin, true, nil
}

// PutVault writes the vault record.
func (s *Store) PutVault(vault *Vault) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("stable: store not initialised")
	}
	if vault == nil {
		return fmt.Errorf("stable: vault must not be nil")
	}
	id := strings.TrimSpace(vault.ID)
	if id == "" {
		return fmt.Errorf("stable: vault id required")
	}
	stored := storedVault{
		ID:                 id,
		StablecoinID:       vault.StablecoinID,
		CollateralAccount:  string(vault.CollateralAccount),
		TotalCollateral:    vault.TotalCollateral,
		TotalValueLocked:   vault.TotalValueLocked,
		CurrentRatioBps:    vault.CurrentRatioBps,
		LastDepositTime:    sanitizeUnix(vault.LastDepositTime),
		LastWithdrawalTime: sanitizeUnix(vault.LastWithdrawalTime),
		DepositCount:       vault.DepositCount,
		WithdrawalCount:    vault.WithdrawalCount,
	}
	encoded, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return err
	}
	return s.db.Put(vaultKey(id), encoded)
}

// GetVault retrieves a vault record by identifier.
func (s *Store) GetVault(id string) (*Vault, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("stable: store not initialised")
	}
	raw, err := s.db.Get(vaultKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedVault
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("stable: decode vault %s: %w", id, err)
	}
	vault := &Vault{
		ID:                 stored.ID,
		StablecoinID:       stored.StablecoinID,
		CollateralAccount:  Ref(stored.CollateralAccount),
		TotalCollateral:    stored.TotalCollateral,
		TotalValueLocked:   stored.TotalValueLocked,
		CurrentRatioBps:    stored.CurrentRatioBps,
		LastDepositTime:    int64(stored.LastDepositTime),
		LastWithdrawalTime: int64(stored.LastWithdrawalTime),
		DepositCount:       stored.DepositCount,
		WithdrawalCount:    stored.WithdrawalCount,
	}
	return vault, true, nil
}

// ListStablecoins returns all record identifiers in creation order.
func (s *Store) ListStablecoins() ([]string, error) {
	entries, err := s.registry()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

func (s *Store) registry() ([]registryEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("stable: store not initialised")
	}
	raw, err := s.db.Get(registryIndexKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []registryEntry
	if err := rlp.DecodeBytes(raw, &entries); err != nil {
		return nil, fmt.Errorf("stable: decode registry: %w", err)
	}
	return entries, nil
}

func (s *Store) appendRegistry(entry registryEntry) error {
	entries, err := s.registry()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	encoded, err := rlp.EncodeToBytes(entries)
	if err != nil {
		return err
	}
	return s.db.Put(registryIndexKey, encoded)
}
