// internal/sniping/handlers.go
package sniping

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/raydium-listener/internal/dex/openbook"
	"github.com/rovshanmuradov/raydium-listener/internal/dex/raydium"
	"github.com/rovshanmuradov/raydium-listener/internal/events"
	"github.com/rovshanmuradov/raydium-listener/internal/eventlistener"
	"github.com/rovshanmuradov/raydium-listener/internal/metrics"
)

// Skip reasons
const (
	ReasonOpened          = "already_open"
	ReasonSnipeList       = "snipe_list"
	ReasonMintable        = "mintable"
	ReasonMintCheckFailed = "mint_check_failed"
	ReasonKnownToken      = "known_token"
)

// HandlePoolNotification decodes a pool account and processes it once, if it opens in the future.
func (s *Sniper) HandlePoolNotification(ctx context.Context, n eventlistener.Notification) {
	s.metrics.NotificationReceived(metrics.SourcePools)
	key := n.Account.String()

	poolState, err := raydium.DecodeLiquidityStateV4(n.Data)
	if err != nil {
		s.metrics.DecodeFailed(metrics.SourcePools)
		s.logger.Error("Failed to decode pool", zap.String("pool", key), zap.Error(err))
		return
	}

	// pools that already opened are not recorded
	if !poolState.IsOpenAfter(s.now().Unix()) {
		s.metrics.Skipped(metrics.SourcePools, ReasonOpened)
		return
	}
	if !s.existingLiquidityPools.CheckAndAdd(key) {
		s.metrics.Duplicate(metrics.SourcePools)
		return
	}

	s.processRaydiumPool(ctx, n.Account, poolState, n.Slot)
}

func (s *Sniper) processRaydiumPool(ctx context.Context, id solana.PublicKey, poolState *raydium.LiquidityStateV4, slot uint64) {
	baseMint := poolState.BaseMint
	logger := s.logger.With(zap.String("pool", id.String()), zap.String("mint", baseMint.String()))

	if !s.snipeList.Contains(baseMint.String()) {
		logger.Debug("Skipping, mint is not in snipe list")
		s.skipPool(id, baseMint, ReasonSnipeList)
		return
	}

	if s.opts.CheckIfMintIsRenounced {
		renounced, err := s.checkMintable(ctx, baseMint)
		if err != nil {
			logger.Debug("Mint check error", zap.Error(err))
			logger.Error("Failed to check if mint is renounced")
			s.skipPool(id, baseMint, ReasonMintCheckFailed)
			return
		}
		if !renounced {
			logger.Warn("Skipping, owner can mint tokens!")
			s.skipPool(id, baseMint, ReasonMintable)
			return
		}
	}

	logger.Info("New pool detected",
		zap.Uint64("open_time", poolState.PoolOpenTime),
		zap.Uint64("slot", slot))
	s.metrics.HandedOff(metrics.SourcePools)
	s.publish(events.PoolDetectedEvent{
		BaseEvent: events.BaseEvent{EventType: events.PoolDetected, EventTime: s.now()},
		PoolID:    id.String(),
		BaseMint:  baseMint.String(),
		QuoteMint: poolState.QuoteMint.String(),
		MarketID:  poolState.MarketID.String(),
		OpenTime:  time.Unix(int64(poolState.PoolOpenTime), 0),
		Slot:      slot,
	})
}

// checkMintable reports whether the mint authority of mint has been renounced.
func (s *Sniper) checkMintable(ctx context.Context, mint solana.PublicKey) (bool, error) {
	var renounced bool
	err := s.metrics.MeasureMintCheck(func() error {
		info, err := s.mints.GetMint(ctx, mint)
		if err != nil {
			return err
		}
		renounced = info.IsRenounced()
		return nil
	})
	return renounced, err
}

func (s *Sniper) skipPool(id, baseMint solana.PublicKey, reason string) {
	s.metrics.Skipped(metrics.SourcePools, reason)
	s.publish(events.PoolSkippedEvent{
		BaseEvent: events.BaseEvent{EventType: events.PoolSkipped, EventTime: s.now()},
		PoolID:    id.String(),
		BaseMint:  baseMint.String(),
		Reason:    reason,
	})
}

// HandleMarketNotification processes each market account once.
func (s *Sniper) HandleMarketNotification(ctx context.Context, n eventlistener.Notification) {
	s.metrics.NotificationReceived(metrics.SourceMarkets)

	if !s.existingOpenBookMarkets.CheckAndAdd(n.Account.String()) {
		s.metrics.Duplicate(metrics.SourceMarkets)
		return
	}

	s.processOpenBookMarket(ctx, n)
}

func (s *Sniper) processOpenBookMarket(_ context.Context, n eventlistener.Notification) {
	market, err := openbook.DecodeMarketStateV3(n.Data)
	if err != nil {
		s.metrics.DecodeFailed(metrics.SourceMarkets)
		s.logger.Error("Failed to process market", zap.String("market", n.Account.String()), zap.Error(err))
		return
	}

	baseMint := market.BaseMint.String()
	if !s.existingTokenAccounts.CheckAndAdd(baseMint) {
		s.metrics.Skipped(metrics.SourceMarkets, ReasonKnownToken)
		return
	}

	s.logger.Debug("New market detected",
		zap.String("market", n.Account.String()),
		zap.String("mint", baseMint))
	s.metrics.HandedOff(metrics.SourceMarkets)
	s.publish(events.MarketDetectedEvent{
		BaseEvent:  events.BaseEvent{EventType: events.MarketDetected, EventTime: s.now()},
		MarketID:   n.Account.String(),
		BaseMint:   baseMint,
		QuoteMint:  market.QuoteMint.String(),
		EventQueue: market.EventQueue.String(),
		Bids:       market.Bids.String(),
		Asks:       market.Asks.String(),
		Slot:       n.Slot,
	})
}
