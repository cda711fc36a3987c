// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/raydium-listener/internal/blockchain/solbc"
	"github.com/rovshanmuradov/raydium-listener/internal/config"
	"github.com/rovshanmuradov/raydium-listener/internal/events"
	"github.com/rovshanmuradov/raydium-listener/internal/eventlistener"
	"github.com/rovshanmuradov/raydium-listener/internal/license"
	"github.com/rovshanmuradov/raydium-listener/internal/metrics"
	"github.com/rovshanmuradov/raydium-listener/internal/snipelist"
	"github.com/rovshanmuradov/raydium-listener/internal/sniping"
)

const eventBufferSize = 256

// Runner wires the listener components from a validated config.
type Runner struct {
	cfg         *config.Config
	logger      *zap.Logger
	dialOptions eventlistener.DialOptions
	shutdown    *ShutdownHandler
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:         cfg,
		logger:      logger,
		dialOptions: eventlistener.DefaultDialOptions(),
		shutdown:    NewShutdownHandler(logger, 10*time.Second),
	}
}

// Run blocks until ctx is cancelled or both subscriptions end.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		if err := r.shutdown.Shutdown(context.Background()); err != nil {
			r.logger.Warn("Shutdown completed with errors", zap.Error(err))
		}
	}()

	if err := r.validateLicense(ctx); err != nil {
		return fmt.Errorf("license validation failed: %w", err)
	}

	solClient := solbc.NewClient(r.cfg.RPCEndpoint, r.cfg.Commitment(), r.logger)

	listener, err := eventlistener.NewEventListener(ctx, r.cfg.RPCWebsocketEndpoint, r.dialOptions, r.logger)
	if err != nil {
		return err
	}
	r.shutdown.AddFunc("websocket", func() error {
		listener.Close()
		return nil
	})

	bus := events.NewBus(r.logger, eventBufferSize)
	r.shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return bus.Shutdown(ctx)
	})
	subscribeLogHandlers(bus, r.logger)

	snipeListPath := r.cfg.SnipeListPath
	if snipeListPath == "" {
		snipeListPath = snipelist.DefaultPath()
	}
	snipeList := snipelist.New(r.cfg.UseSnipeList, snipeListPath, r.logger)
	collector := metrics.NewCollector(func() float64 { return float64(snipeList.Len()) })

	sniper := sniping.NewSniper(sniping.Params{
		Options: sniping.Options{
			QuoteMint:                r.cfg.QuoteMintKey(),
			Commitment:               r.cfg.Commitment(),
			CheckIfMintIsRenounced:   r.cfg.CheckIfMintIsRenounced,
			SnipeListRefreshInterval: r.cfg.RefreshInterval(),
		},
		Source:    listener,
		Mints:     solClient,
		SnipeList: snipeList,
		Publisher: bus,
		Metrics:   collector,
		Logger:    r.logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	if r.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return collector.Serve(gCtx, r.cfg.MetricsAddr, r.logger)
		})
	}
	g.Go(func() error {
		defer cancel()
		return sniper.Run(gCtx)
	})

	return g.Wait()
}

func (r *Runner) validateLicense(ctx context.Context) error {
	if !r.cfg.LicenseEnabled() {
		return nil
	}

	validator := license.NewKeygenValidator(
		r.cfg.KeygenAccountID,
		r.cfg.KeygenProductToken,
		r.cfg.KeygenProductID,
		r.logger,
	)
	return validator.ValidateLicense(ctx, r.cfg.License)
}

// subscribeLogHandlers is the default downstream consumer.
func subscribeLogHandlers(bus *events.Bus, logger *zap.Logger) {
	logger = logger.Named("handoff")

	bus.Subscribe(events.PoolDetected, events.OnPoolDetected(func(_ context.Context, pool events.PoolDetectedEvent) error {
		logger.Info("Pool ready",
			zap.String("pool", pool.PoolID),
			zap.String("mint", pool.BaseMint),
			zap.String("market", pool.MarketID),
			zap.Time("open_time", pool.OpenTime))
		return nil
	}))
	bus.Subscribe(events.MarketDetected, events.OnMarketDetected(func(_ context.Context, market events.MarketDetectedEvent) error {
		logger.Debug("Market ready",
			zap.String("market", market.MarketID),
			zap.String("mint", market.BaseMint))
		return nil
	}))
	bus.Subscribe(events.PoolSkipped, events.OnPoolSkipped(func(_ context.Context, skipped events.PoolSkippedEvent) error {
		logger.Debug("Pool skipped",
			zap.String("pool", skipped.PoolID),
			zap.String("reason", skipped.Reason))
		return nil
	}))
}
