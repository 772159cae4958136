package stable

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

var (
	stablecoinPrefix = []byte("stable/mint/")
	vaultPrefix      = []byte("stable/vault/")
	registryIndexKey = []byte("stable/mint/index")
)

func stablecoinKey(id string) []byte {
	trimmed := strings.TrimSpace(id)
	buf := make([]byte, len(stablecoinPrefix)+len(trimmed))
	copy(buf, stablecoinPrefix)
	copy(buf[len(stablecoinPrefix):], trimmed)
	return buf
}

func vaultKey(id string) []byte {
	trimmed := strings.TrimSpace(id)
	buf := make([]byte, len(vaultPrefix)+len(trimmed))
	copy(buf, vaultPrefix)
	copy(buf[len(vaultPrefix):], trimmed)
	return buf
}

// StablecoinID derives the deterministic record identifier for an authority
// and symbol pair. The same pair always maps to the same record.
func StablecoinID(authority Ref, symbol string) string {
	digest := sha256.Sum256([]byte("stable/mint|" + strings.TrimSpace(string(authority)) + "|" + strings.ToUpper(strings.TrimSpace(symbol))))
	return hex.EncodeToString(digest[:16])
}

// VaultID derives the vault identifier owned by a stablecoin record.
func VaultID(stablecoinID string) string {
	digest := sha256.Sum256([]byte("stable/vault|" + strings.TrimSpace(stablecoinID)))
	return hex.EncodeToString(digest[:16])
}

// MintAuthorityID derives the reference the engine signs mint and burn
// instructions with on behalf of a stablecoin record.
func MintAuthorityID(stablecoinID string) Ref {
	digest := sha256.Sum256([]byte("stable/mint-authority|" + strings.TrimSpace(stablecoinID)))
	return Ref(hex.EncodeToString(digest[:16]))
}
