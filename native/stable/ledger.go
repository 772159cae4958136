package stable

// TokenAccount is the read-model view of an external ledger account used for
// linkage and balance checks.
type TokenAccount struct {
	Address Ref
	Mint    Ref
	Owner   Ref
	Balance uint64
}

// TokenLedger is the external service that holds and moves fungible balances.
// The engine issues at most one collateral movement and one issued-unit
// movement per transition; a failed call aborts the whole transition before
// any record mutation is persisted.
type TokenLedger interface {
	// Account resolves the current view of a token account.
	Account(ref Ref) (TokenAccount, error)
	// Transfer moves amount between two accounts on behalf of authority.
	Transfer(from, to, authority Ref, amount uint64) error
	// MintTo creates amount new units of mint in the target account.
	MintTo(mint, to, authority Ref, amount uint64) error
	// Burn destroys amount units of mint held by the source account.
	Burn(mint, from, authority Ref, amount uint64) error
}
