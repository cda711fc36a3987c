// internal/dex/openbook/market_state.go
// Package openbook decodes OpenBook (Serum v3) market accounts.
package openbook

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the OpenBook v1 program that owns v3 market accounts.
var ProgramID = solana.MPK("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")

// Market state v3 layout offsets
const (
	MarketStateV3Size = 388

	AccountFlagsOffset = 5
	OwnAddressOffset   = 13
	BaseMintOffset     = 53
	QuoteMintOffset    = 85
	BaseVaultOffset    = 117
	QuoteVaultOffset   = 165
	EventQueueOffset   = 253
	BidsOffset         = 285
	AsksOffset         = 317
)

// ErrInvalidDataSize is returned when account data does not match the v3 layout size.
var ErrInvalidDataSize = errors.New("invalid market state data size")

// MarketStateV3 is the on-chain layout of a market account, including its head and tail padding.
type MarketStateV3 struct {
	HeadPadding            [5]byte
	AccountFlags           uint64
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	TailPadding            [7]byte
}

// DecodeMarketStateV3 decodes a market account. The data must be exactly MarketStateV3Size bytes.
func DecodeMarketStateV3(data []byte) (*MarketStateV3, error) {
	if len(data) != MarketStateV3Size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidDataSize, len(data), MarketStateV3Size)
	}

	var market MarketStateV3
	if err := bin.NewBinDecoder(data).Decode(&market); err != nil {
		return nil, fmt.Errorf("failed to decode market state: %w", err)
	}
	return &market, nil
}
