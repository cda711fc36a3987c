// internal/sniping/sniper.go
// Package sniping filters new Raydium pools and OpenBook markets and hands the
// survivors to a downstream publisher.
package sniping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/raydium-listener/internal/blockchain/solbc"
	"github.com/rovshanmuradov/raydium-listener/internal/dex/openbook"
	"github.com/rovshanmuradov/raydium-listener/internal/dex/raydium"
	"github.com/rovshanmuradov/raydium-listener/internal/events"
	"github.com/rovshanmuradov/raydium-listener/internal/eventlistener"
	"github.com/rovshanmuradov/raydium-listener/internal/metrics"
	"github.com/rovshanmuradov/raydium-listener/internal/seen"
	"github.com/rovshanmuradov/raydium-listener/internal/snipelist"
)

// MintFetcher loads a token mint account.
type MintFetcher interface {
	GetMint(ctx context.Context, mint solana.PublicKey) (*solbc.Mint, error)
}

// Publisher receives accounts that passed every filter.
type Publisher interface {
	Publish(event events.Event) error
}

// Options are the filter switches of a Sniper.
type Options struct {
	QuoteMint                solana.PublicKey
	Commitment               rpc.CommitmentType
	CheckIfMintIsRenounced   bool
	SnipeListRefreshInterval time.Duration
}

// Params bundles the collaborators of a Sniper.
type Params struct {
	Options   Options
	Source    eventlistener.Source
	Mints     MintFetcher
	SnipeList *snipelist.List
	Publisher Publisher
	Metrics   *metrics.Collector
	Logger    *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sniper owns the de-duplication state for both event sources.
type Sniper struct {
	opts      Options
	source    eventlistener.Source
	mints     MintFetcher
	snipeList *snipelist.List
	publisher Publisher
	metrics   *metrics.Collector
	logger    *zap.Logger
	now       func() time.Time

	existingLiquidityPools  *seen.Set
	existingOpenBookMarkets *seen.Set
	existingTokenAccounts   *seen.Set
}

// poolStatusFilter is PoolStatusSwapOnly encoded as a little-endian u64.
var poolStatusFilter = []byte{6, 0, 0, 0, 0, 0, 0, 0}

// NewSniper creates a Sniper from p.
func NewSniper(p Params) *Sniper {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	m := p.Metrics
	if m == nil {
		m = metrics.NewCollector(nil)
	}
	return &Sniper{
		opts:                    p.Options,
		source:                  p.Source,
		mints:                   p.Mints,
		snipeList:               p.SnipeList,
		publisher:               p.Publisher,
		metrics:                 m,
		logger:                  p.Logger.Named("sniper"),
		now:                     now,
		existingLiquidityPools:  seen.NewSet(),
		existingOpenBookMarkets: seen.NewSet(),
		existingTokenAccounts:   seen.NewSet(),
	}
}

// PoolRegistration describes the Raydium v4 subscription with its server-side filters.
func (s *Sniper) PoolRegistration() eventlistener.Registration {
	return eventlistener.Registration{
		Name:       "raydium",
		ProgramID:  raydium.RaydiumV4ProgramID,
		Commitment: s.opts.Commitment,
		Filters: []rpc.RPCFilter{
			eventlistener.DataSizeFilter(raydium.LiquidityStateV4Size),
			eventlistener.MemcmpFilter(raydium.QuoteMintOffset, s.opts.QuoteMint.Bytes()),
			eventlistener.MemcmpFilter(raydium.MarketProgramIDOffset, openbook.ProgramID.Bytes()),
			eventlistener.MemcmpFilter(raydium.StatusOffset, poolStatusFilter),
		},
	}
}

// MarketRegistration describes the OpenBook v3 subscription with its server-side filters.
func (s *Sniper) MarketRegistration() eventlistener.Registration {
	return eventlistener.Registration{
		Name:       "openbook",
		ProgramID:  openbook.ProgramID,
		Commitment: s.opts.Commitment,
		Filters: []rpc.RPCFilter{
			eventlistener.DataSizeFilter(openbook.MarketStateV3Size),
			eventlistener.MemcmpFilter(openbook.QuoteMintOffset, s.opts.QuoteMint.Bytes()),
		},
	}
}

// MarkKnownToken records a base mint whose markets should be ignored.
func (s *Sniper) MarkKnownToken(mint solana.PublicKey) {
	s.existingTokenAccounts.Add(mint.String())
}

// Run loads the snipe list, registers both subscriptions and consumes them until ctx is
// done or both subscriptions end. The snipe list reload loop runs in the same group.
// Only a failed initial snipe list load or a failed registration is returned as an error.
func (s *Sniper) Run(ctx context.Context) error {
	if err := s.snipeList.Load(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pools, err := s.source.Subscribe(runCtx, s.PoolRegistration())
	if err != nil {
		return fmt.Errorf("failed to subscribe to raydium pools: %w", err)
	}
	markets, err := s.source.Subscribe(runCtx, s.MarketRegistration())
	if err != nil {
		return fmt.Errorf("failed to subscribe to openbook markets: %w", err)
	}

	s.logger.Info("Listening for Raydium changes", zap.String("program_id", raydium.RaydiumV4ProgramID.String()))
	s.logger.Info("Listening for OpenBook changes", zap.String("program_id", openbook.ProgramID.String()))

	g, gCtx := errgroup.WithContext(runCtx)
	if s.snipeList.Enabled() {
		g.Go(func() error {
			s.snipeList.Run(gCtx, s.opts.SnipeListRefreshInterval)
			return nil
		})
	}

	// the reload loop stops once both subscriptions have ended
	var consumers sync.WaitGroup
	consumers.Add(2)
	go func() {
		consumers.Wait()
		cancel()
	}()

	g.Go(func() error {
		defer consumers.Done()
		s.consume(gCtx, "raydium", pools, s.HandlePoolNotification)
		return nil
	})
	g.Go(func() error {
		defer consumers.Done()
		s.consume(gCtx, "openbook", markets, s.HandleMarketNotification)
		return nil
	})
	return g.Wait()
}

// consume handles notifications one at a time until the channel closes.
func (s *Sniper) consume(ctx context.Context, name string, ch <-chan eventlistener.Notification, handle func(context.Context, eventlistener.Notification)) {
	for n := range ch {
		handle(ctx, n)
	}
	if ctx.Err() == nil {
		s.logger.Warn("Subscription channel closed", zap.String("registration", name))
	}
}

func (s *Sniper) publish(e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(e); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(e.Type())),
			zap.Error(err))
	}
}
