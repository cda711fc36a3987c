package raydium

import (
	"bytes"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openBookProgram = solana.MPK("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")

func encodeState(t *testing.T, s *LiquidityStateV4) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bin.NewBinEncoder(&buf).Encode(s))
	return buf.Bytes()
}

func TestLiquidityStateV4LayoutOffsets(t *testing.T) {
	baseMint := solana.NewWallet().PublicKey()
	state := &LiquidityStateV4{
		Status:          PoolStatusSwapOnly,
		PoolOpenTime:    1_700_000_000,
		BaseMint:        baseMint,
		QuoteMint:       WrappedSolMint,
		MarketProgramID: openBookProgram,
		LpReserve:       42,
	}

	data := encodeState(t, state)
	require.Len(t, data, LiquidityStateV4Size)

	assert.Equal(t, []byte{6, 0, 0, 0, 0, 0, 0, 0}, data[StatusOffset:StatusOffset+8])
	assert.Equal(t, uint64(1_700_000_000), binary.LittleEndian.Uint64(data[PoolOpenTimeOffset:PoolOpenTimeOffset+8]))
	assert.Equal(t, baseMint.Bytes(), data[BaseMintOffset:BaseMintOffset+32])
	assert.Equal(t, WrappedSolMint.Bytes(), data[QuoteMintOffset:QuoteMintOffset+32])
	assert.Equal(t, openBookProgram.Bytes(), data[MarketProgramIDOffset:MarketProgramIDOffset+32])
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(data[LpReserveOffset:LpReserveOffset+8]))
}

func TestDecodeLiquidityStateV4(t *testing.T) {
	baseMint := solana.NewWallet().PublicKey()
	marketID := solana.NewWallet().PublicKey()

	data := make([]byte, LiquidityStateV4Size)
	binary.LittleEndian.PutUint64(data[StatusOffset:], PoolStatusSwapOnly)
	binary.LittleEndian.PutUint64(data[PoolOpenTimeOffset:], 1_800_000_000)
	copy(data[BaseMintOffset:], baseMint.Bytes())
	copy(data[QuoteMintOffset:], USDCMint.Bytes())
	copy(data[MarketIDOffset:], marketID.Bytes())

	state, err := DecodeLiquidityStateV4(data)
	require.NoError(t, err)

	assert.Equal(t, PoolStatusSwapOnly, state.Status)
	assert.Equal(t, uint64(1_800_000_000), state.PoolOpenTime)
	assert.Equal(t, baseMint, state.BaseMint)
	assert.Equal(t, USDCMint, state.QuoteMint)
	assert.Equal(t, marketID, state.MarketID)
}

func TestDecodeLiquidityStateV4RejectsWrongSize(t *testing.T) {
	for _, size := range []int{0, 10, LiquidityStateV4Size - 1, LiquidityStateV4Size + 1} {
		_, err := DecodeLiquidityStateV4(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidDataSize, "size %d", size)
	}
}

func TestIsOpenAfter(t *testing.T) {
	s := &LiquidityStateV4{PoolOpenTime: 100}

	assert.True(t, s.IsOpenAfter(99))
	assert.False(t, s.IsOpenAfter(100))
	assert.False(t, s.IsOpenAfter(101))
	assert.True(t, s.IsOpenAfter(-1))
}

func TestQuoteMintBySymbol(t *testing.T) {
	mint, ok := QuoteMintBySymbol("WSOL")
	assert.True(t, ok)
	assert.Equal(t, WrappedSolMint, mint)

	mint, ok = QuoteMintBySymbol("USDC")
	assert.True(t, ok)
	assert.Equal(t, USDCMint, mint)

	_, ok = QuoteMintBySymbol("BONK")
	assert.False(t, ok)
}

// BenchmarkDecodeLiquidityStateV4 measures decoding of one pool notification payload
func BenchmarkDecodeLiquidityStateV4(b *testing.B) {
	data := make([]byte, LiquidityStateV4Size)
	binary.LittleEndian.PutUint64(data[StatusOffset:], PoolStatusSwapOnly)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeLiquidityStateV4(data); err != nil {
			b.Fatal(err)
		}
	}
}
