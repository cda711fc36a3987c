// internal/dex/raydium/liquidity_state.go
// Package raydium decodes Raydium AMM v4 liquidity pool accounts.
package raydium

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidDataSize is returned when account data does not match the v4 layout size.
var ErrInvalidDataSize = errors.New("invalid liquidity state data size")

// LiquidityStateV4 is the on-chain layout of an AMM v4 pool account.
type LiquidityStateV4 struct {
	Status                 uint64
	Nonce                  uint64
	MaxOrder               uint64
	Depth                  uint64
	BaseDecimal            uint64
	QuoteDecimal           uint64
	State                  uint64
	ResetFlag              uint64
	MinSize                uint64
	VolMaxCutRatio         uint64
	AmountWaveRatio        uint64
	BaseLotSize            uint64
	QuoteLotSize           uint64
	MinPriceMultiplier     uint64
	MaxPriceMultiplier     uint64
	SystemDecimalValue     uint64
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
	BaseNeedTakePnl        uint64
	QuoteNeedTakePnl       uint64
	QuoteTotalPnl          uint64
	BaseTotalPnl           uint64
	PoolOpenTime           uint64
	PunishPcAmount         uint64
	PunishCoinAmount       uint64
	OrderbookToInitTime    uint64

	SwapBaseInAmount   bin.Uint128
	SwapQuoteOutAmount bin.Uint128
	SwapBase2QuoteFee  uint64
	SwapQuoteInAmount  bin.Uint128
	SwapBaseOutAmount  bin.Uint128
	SwapQuote2BaseFee  uint64

	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	BaseMint        solana.PublicKey
	QuoteMint       solana.PublicKey
	LpMint          solana.PublicKey
	OpenOrders      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	LpVault         solana.PublicKey
	Owner           solana.PublicKey

	LpReserve uint64
	Padding   [3]uint64
}

// DecodeLiquidityStateV4 decodes a pool account. The data must be exactly LiquidityStateV4Size bytes.
func DecodeLiquidityStateV4(data []byte) (*LiquidityStateV4, error) {
	if len(data) != LiquidityStateV4Size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidDataSize, len(data), LiquidityStateV4Size)
	}

	var state LiquidityStateV4
	if err := bin.NewBinDecoder(data).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode liquidity state: %w", err)
	}
	return &state, nil
}

// IsOpenAfter reports whether the pool opens strictly after unixSeconds.
func (s *LiquidityStateV4) IsOpenAfter(unixSeconds int64) bool {
	if unixSeconds < 0 {
		return true
	}
	return s.PoolOpenTime > uint64(unixSeconds)
}
