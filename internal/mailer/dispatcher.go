package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/models"
)

const (
	dispatchBatchSize = 100
	cleanupAge        = 7 * 24 * time.Hour
	maxSendAttempts   = 10
)

// LogSender logs messages instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg models.MailMessage) error {
	s.logger.Info("Mail delivered",
		zap.Int64("id", msg.ID),
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// Dispatcher drains the outbox on an interval in the background.
type Dispatcher struct {
	outbox   *Outbox
	sender   Sender
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(outbox *Outbox, sender Sender, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		sender:   sender,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the dispatch loop. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopChan != nil {
		return
	}
	d.stopChan = make(chan struct{})

	d.wg.Add(1)
	go d.loop(d.stopChan)
	d.logger.Info("Mail dispatcher started", zap.Duration("interval", d.interval))
}

// Stop drains one last time and waits for the loop to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopChan == nil {
		d.mu.Unlock()
		return
	}
	close(d.stopChan)
	d.stopChan = nil
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Mail dispatcher stopped")
}

func (d *Dispatcher) loop(stop <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.dispatch()
		case <-stop:
			d.dispatch()
			return
		}
	}
}

func (d *Dispatcher) dispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), d.interval)
	defer cancel()

	pending, err := d.outbox.PendingCount(ctx)
	if err != nil {
		d.logger.Error("Failed to get pending mail count", zap.Error(err))
		return
	}
	if pending > 0 {
		if _, err := d.outbox.Drain(ctx, d.sender, dispatchBatchSize); err != nil {
			d.logger.Error("Failed to drain outbox", zap.Error(err))
		}
	}

	if _, err := d.outbox.Cleanup(ctx, cleanupAge, maxSendAttempts); err != nil {
		d.logger.Error("Failed to cleanup outbox", zap.Error(err))
	}
}
