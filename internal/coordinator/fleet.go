package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/bot"
	"jordanella.com/animix-go/internal/database"
	"jordanella.com/animix-go/internal/events"
	"jordanella.com/animix-go/internal/logging"
	"jordanella.com/animix-go/internal/session"
)

// ErrAccountTimeout fails an account that outlives its wall-clock budget
var ErrAccountTimeout = errors.New("account run timed out")

// Report is what an account run leaves behind, successful or not
type Report struct {
	Name     string
	EgressIP string
	State    *bot.State
}

// AccountRunner runs one account to completion. Implementations must return
// promptly once ctx is done.
type AccountRunner interface {
	RunAccount(ctx context.Context, account accounts.Account) (*Report, error)
}

// AccountResult is sent back to the coordinator by each account goroutine
type AccountResult struct {
	Account accounts.Account
	Report  *Report
	Err     error
	Elapsed time.Duration
}

// PassResult summarises one fleet pass
type PassResult struct {
	ID        string
	Number    int
	Succeeded int
	Failed    int
	Errors    []string
	Elapsed   time.Duration
}

// AccountExecution tracks a running account
type AccountExecution struct {
	Account   accounts.Account
	StartTime time.Time
	Cancel    context.CancelFunc
}

// Options wires a FleetCoordinator
type Options struct {
	Config        *bot.Config
	Accounts      []accounts.Account
	Runner        AccountRunner
	DB            *database.DB // optional
	EventBus      events.EventBus
	ErrorReporter *logging.ErrorReporter
	Logger        *logging.Logger
	Countdown     io.Writer // countdown line target, stdout when nil
	RunOnce       bool
}

// FleetCoordinator runs every account in bounded batches, then sleeps and
// starts over until its context is cancelled
type FleetCoordinator struct {
	mu     sync.RWMutex
	active map[int]*AccountExecution

	config    *bot.Config
	accounts  []accounts.Account
	runner    AccountRunner
	db        *database.DB
	bus       events.EventBus
	reporter  *logging.ErrorReporter
	logger    *logging.Logger
	countdown io.Writer
	runOnce   bool

	countdownTick time.Duration
}

// NewFleetCoordinator creates a coordinator
func NewFleetCoordinator(opts Options) *FleetCoordinator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("Fleet")
	}
	reporter := opts.ErrorReporter
	if reporter == nil {
		reporter = logging.NewErrorReporter()
		reporter.SetLogger(logger)
	}
	countdown := opts.Countdown
	if countdown == nil {
		countdown = os.Stdout
	}

	return &FleetCoordinator{
		active:        make(map[int]*AccountExecution),
		config:        opts.Config,
		accounts:      opts.Accounts,
		runner:        opts.Runner,
		db:            opts.DB,
		bus:           opts.EventBus,
		reporter:      reporter,
		logger:        logger,
		countdown:     countdown,
		runOnce:       opts.RunOnce,
		countdownTick: time.Second,
	}
}

// Run executes fleet passes until ctx is cancelled, or once with RunOnce
func (c *FleetCoordinator) Run(ctx context.Context) error {
	for pass := 1; ; pass++ {
		result := c.RunPass(ctx, pass)
		if ctx.Err() != nil {
			return nil
		}

		wait := c.config.SleepInterval()
		c.logger.InfoWithContext(fmt.Sprintf("Completed all accounts | Waiting %d minutes", c.config.TimeSleep), map[string]interface{}{
			"pass":      result.Number,
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		})
		if c.runOnce {
			return nil
		}

		var err error
		if c.config.AutoShowCountDownTimeSleep {
			err = Countdown(ctx, c.countdown, wait, c.countdownTick)
		} else {
			err = sleep(ctx, wait)
		}
		if err != nil {
			return nil
		}
	}
}

// RunPass runs every account once, batch by batch. A batch fully drains
// before the next one starts.
func (c *FleetCoordinator) RunPass(ctx context.Context, number int) *PassResult {
	start := time.Now()
	result := &PassResult{ID: uuid.NewString(), Number: number}

	c.publish(events.NewPassStartedEvent(result.ID, number, len(c.accounts)))
	if c.db != nil {
		if err := c.db.StartPass(result.ID, number, len(c.accounts), c.config.UseProxy); err != nil {
			c.logger.Warn(fmt.Sprintf("Failed to record pass: %v", err))
		}
	}

	size := c.config.Concurrency()
	for first := 0; first < len(c.accounts); first += size {
		if ctx.Err() != nil {
			break
		}
		last := min(first+size, len(c.accounts))
		batch := c.accounts[first:last]

		failed := c.runBatch(ctx, result, batch)
		c.publish(events.NewBatchFinishedEvent(result.ID, first, len(batch), failed))

		if last < len(c.accounts) {
			if err := sleep(ctx, c.config.Pacing.Batch); err != nil {
				break
			}
		}
	}

	result.Elapsed = time.Since(start)
	c.publish(events.NewPassCompletedEvent(result.ID, result.Succeeded, result.Failed, result.Elapsed))
	if c.db != nil {
		if err := c.db.CompletePass(result.ID, result.Succeeded, result.Failed); err != nil {
			c.logger.Warn(fmt.Sprintf("Failed to record pass completion: %v", err))
		}
	}
	return result
}

// runBatch starts one goroutine per account and collects their results over
// a channel. Returns the number of failed accounts.
func (c *FleetCoordinator) runBatch(ctx context.Context, pass *PassResult, batch []accounts.Account) int {
	results := make(chan AccountResult, len(batch))
	for _, account := range batch {
		go c.executeAccount(ctx, pass.ID, account, results)
	}

	collected := make([]AccountResult, 0, len(batch))
	for range batch {
		collected = append(collected, <-results)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Account.Index < collected[j].Account.Index
	})

	var batchErrors []string
	for _, r := range collected {
		if r.Err != nil {
			batchErrors = append(batchErrors, fmt.Sprintf("Account %d: %v", r.Account.Number(), r.Err))
		} else {
			pass.Succeeded++
		}
	}
	pass.Failed += len(batchErrors)
	pass.Errors = append(pass.Errors, batchErrors...)

	if len(batchErrors) > 0 {
		c.logger.WarnWithContext(fmt.Sprintf("Batch finished with %d failed accounts", len(batchErrors)), map[string]interface{}{
			"pass":   pass.Number,
			"errors": batchErrors,
		})
		for _, msg := range batchErrors {
			c.logger.Warn(msg)
		}
	}
	return len(batchErrors)
}

// executeAccount runs one account under the account timeout and always
// sends exactly one result
func (c *FleetCoordinator) executeAccount(ctx context.Context, passID string, account accounts.Account, results chan<- AccountResult) {
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, c.config.AccountTimeout)
	defer cancel()

	c.track(account, start, cancel)
	defer c.untrack(account.Index)

	c.publish(events.NewAccountStartedEvent(passID, account.Number(), account.Proxy))
	runID := c.recordStart(passID, account)

	type outcome struct {
		report *Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := c.runner.RunAccount(runCtx, account)
		done <- outcome{report, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		// The runner is abandoned; its buffered send never blocks
		out.err = runCtx.Err()
	}
	if out.err != nil && runCtx.Err() != nil {
		out.err = c.interruption(ctx, runCtx)
	}

	result := AccountResult{Account: account, Report: out.report, Err: out.err, Elapsed: time.Since(start)}
	c.finish(passID, runID, result)
	results <- result
}

// interruption explains why runCtx ended: fleet shutdown, the account
// timeout, or StopAccount
func (c *FleetCoordinator) interruption(ctx, runCtx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrAccountTimeout, c.config.AccountTimeout)
	}
	return runCtx.Err()
}

func (c *FleetCoordinator) finish(passID string, runID int64, r AccountResult) {
	if r.Err == nil {
		c.publish(events.NewAccountCompletedEvent(passID, r.Account.Number(), r.Elapsed))
	} else {
		c.publish(events.NewAccountFailedEvent(passID, r.Account.Number(), r.Err))
		c.reporter.ReportAccountError(categorize(r.Err), r.Account.Number(), "Account processing error", r.Err)
	}
	c.recordFinish(passID, runID, r)
}

// categorize maps an account failure onto an error report category
func categorize(err error) logging.ErrorCategory {
	switch {
	case errors.Is(err, ErrAccountTimeout), errors.Is(err, context.DeadlineExceeded):
		return logging.ErrorCategoryTimeout
	case errors.Is(err, bot.ErrProxyIdentity):
		return logging.ErrorCategoryProxy
	case errors.Is(err, session.ErrInvalidInitData):
		return logging.ErrorCategorySession
	case errors.Is(err, bot.ErrNoProfile):
		return logging.ErrorCategoryAccount
	case errors.Is(err, context.Canceled):
		return logging.ErrorCategoryScheduler
	default:
		return logging.ErrorCategoryNetwork
	}
}

func (c *FleetCoordinator) publish(event events.Event) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

func (c *FleetCoordinator) track(account accounts.Account, start time.Time, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[account.Index] = &AccountExecution{Account: account, StartTime: start, Cancel: cancel}
}

func (c *FleetCoordinator) untrack(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, index)
}

// StopAccount cancels a running account by its 0-based index
func (c *FleetCoordinator) StopAccount(index int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	execution, exists := c.active[index]
	if !exists {
		return fmt.Errorf("account %d is not running", index+1)
	}
	execution.Cancel()
	return nil
}

// GetActiveAccounts returns the 0-based indexes of running accounts
func (c *FleetCoordinator) GetActiveAccounts() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	indexes := make([]int, 0, len(c.active))
	for index := range c.active {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

// GetActiveAccountCount returns the number of running accounts
func (c *FleetCoordinator) GetActiveAccountCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.active)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
