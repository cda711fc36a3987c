// internal/blockchain/solbc/mint.go
package solbc

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MintSize is the length of an SPL token mint account without extensions.
const MintSize = 82

// Mint mirrors the SPL token mint layout with the raw COption tags kept.
type Mint struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

// DecodeMint decodes the first MintSize bytes of a mint account. Token-2022 extensions are ignored.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("mint data too short: got %d, need %d", len(data), MintSize)
	}

	var mint Mint
	if err := bin.NewBinDecoder(data[:MintSize]).Decode(&mint); err != nil {
		return nil, fmt.Errorf("failed to decode mint: %w", err)
	}
	return &mint, nil
}

// IsRenounced reports whether nobody can mint more supply.
func (m *Mint) IsRenounced() bool {
	return m.MintAuthorityOption == 0
}
