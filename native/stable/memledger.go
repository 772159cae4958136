package stable

import (
	"fmt"
	"sync"
)

// MemLedger is an in-memory TokenLedger for development and tests. Production
// deployments wire an adapter to the real token service instead.
type MemLedger struct {
	mu       sync.RWMutex
	accounts map[Ref]TokenAccount
}

// NewMemLedger constructs an empty ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{accounts: make(map[Ref]TokenAccount)}
}

// SetAccount creates or replaces an account.
func (l *MemLedger) SetAccount(account TokenAccount) {
	if l == nil || account.Address.IsZero() {
		return
	}
	l.mu.Lock()
	l.accounts[account.Address] = account
	l.mu.Unlock()
}

// Account resolves the current view of a token account.
func (l *MemLedger) Account(ref Ref) (TokenAccount, error) {
	if l == nil {
		return TokenAccount{}, fmt.Errorf("stable: ledger not initialised")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	account, ok := l.accounts[ref]
	if !ok {
		return TokenAccount{}, fmt.Errorf("stable: account %s not found", ref)
	}
	return account, nil
}

// Transfer moves amount between two accounts of the same mint. The authority
// must own the source account or be the source account itself, which covers
// vault-owned collateral accounts.
func (l *MemLedger) Transfer(from, to, authority Ref, amount uint64) error {
	if l == nil {
		return fmt.Errorf("stable: ledger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("stable: account %s not found", from)
	}
	dst, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("stable: account %s not found", to)
	}
	if src.Owner != authority && src.Address != authority {
		return fmt.Errorf("stable: authority %s cannot move %s", authority, from)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("stable: mint mismatch between %s and %s", from, to)
	}
	if src.Balance < amount {
		return ErrInsufficientBalance
	}
	src.Balance -= amount
	next, err := checkedAdd(dst.Balance, amount)
	if err != nil {
		return err
	}
	dst.Balance = next
	l.accounts[from] = src
	l.accounts[to] = dst
	return nil
}

// MintTo creates amount new units of mint in the target account.
func (l *MemLedger) MintTo(mint, to, authority Ref, amount uint64) error {
	if l == nil {
		return fmt.Errorf("stable: ledger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	dst, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("stable: account %s not found", to)
	}
	if dst.Mint != mint {
		return fmt.Errorf("stable: account %s does not hold mint %s", to, mint)
	}
	next, err := checkedAdd(dst.Balance, amount)
	if err != nil {
		return err
	}
	dst.Balance = next
	l.accounts[to] = dst
	return nil
}

// Burn destroys amount units of mint held by the source account.
func (l *MemLedger) Burn(mint, from, authority Ref, amount uint64) error {
	if l == nil {
		return fmt.Errorf("stable: ledger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("stable: account %s not found", from)
	}
	if src.Mint != mint {
		return fmt.Errorf("stable: account %s does not hold mint %s", from, mint)
	}
	if src.Balance < amount {
		return ErrInsufficientBalance
	}
	src.Balance -= amount
	l.accounts[from] = src
	return nil
}
