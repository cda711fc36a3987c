// internal/dex/raydium/constants.go
package raydium

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	RaydiumV4ProgramID = solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	TokenProgramID     = solana.MPK("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
)

// Quote mints the listener can filter pools and markets on.
var (
	WrappedSolMint = solana.MPK("So11111111111111111111111111111111111111112")
	USDCMint       = solana.MPK("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// Pool status values stored in the first u64 of the AMM account.
const (
	PoolStatusUninitialized uint64 = 0
	PoolStatusInitialized   uint64 = 1
	PoolStatusDisabled      uint64 = 2
	PoolStatusWithdrawOnly  uint64 = 3
	PoolStatusLiquidityOnly uint64 = 4
	PoolStatusOrderBookOnly uint64 = 5
	PoolStatusSwapOnly      uint64 = 6
	PoolStatusWaitingTrade  uint64 = 7
)

// Liquidity state v4 layout offsets
const (
	LiquidityStateV4Size = 752

	StatusOffset          = 0
	PoolOpenTimeOffset    = 28 * 8
	BaseVaultOffset       = 336
	QuoteVaultOffset      = BaseVaultOffset + 32
	BaseMintOffset        = QuoteVaultOffset + 32
	QuoteMintOffset       = BaseMintOffset + 32
	LpMintOffset          = QuoteMintOffset + 32
	OpenOrdersOffset      = LpMintOffset + 32
	MarketIDOffset        = OpenOrdersOffset + 32
	MarketProgramIDOffset = MarketIDOffset + 32
	TargetOrdersOffset    = MarketProgramIDOffset + 32
	WithdrawQueueOffset   = TargetOrdersOffset + 32
	LpVaultOffset         = WithdrawQueueOffset + 32
	OwnerOffset           = LpVaultOffset + 32
	LpReserveOffset       = OwnerOffset + 32
)

// QuoteMintBySymbol resolves the configured quote token symbol.
func QuoteMintBySymbol(symbol string) (solana.PublicKey, bool) {
	switch symbol {
	case "WSOL", "SOL":
		return WrappedSolMint, true
	case "USDC":
		return USDCMint, true
	default:
		return solana.PublicKey{}, false
	}
}
