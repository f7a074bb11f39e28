package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// completeBatch caps how many bookings one sweep moves.
const completeBatch = 200

// DueCompleter moves past confirmed bookings to completed.
type DueCompleter interface {
	CompleteDue(ctx context.Context, limit int) (int, error)
}

// Completer periodically completes bookings whose date has passed.
type Completer struct {
	ledger   DueCompleter
	interval time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewCompleter(ledger DueCompleter, interval time.Duration, logger *zap.Logger) *Completer {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop is
// called or ctx is done.
func (c *Completer) Start(ctx context.Context) {
	c.logger.Info("starting booking completer", zap.Duration("interval", c.interval))
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop ends the background loop and waits for an in-flight sweep.
func (c *Completer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}

func (c *Completer) run(ctx context.Context) {
	defer c.wg.Done()
	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep(ctx)
		case <-c.stopChan:
			c.logger.Info("booking completer stopped")
			return
		case <-ctx.Done():
			c.logger.Info("booking completer cancelled")
			return
		}
	}
}

// sweep drains due bookings in batches.
func (c *Completer) sweep(ctx context.Context) {
	total := 0
	for {
		n, err := c.ledger.CompleteDue(ctx, completeBatch)
		total += n
		if err != nil {
			c.logger.Error("complete due bookings", zap.Int("completed", total), zap.Error(err))
			return
		}
		if n < completeBatch || ctx.Err() != nil {
			break
		}
	}
	if total > 0 {
		c.logger.Info("completed past bookings", zap.Int("count", total))
	}
}
