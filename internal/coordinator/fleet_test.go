package coordinator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/bot"
	"jordanella.com/animix-go/internal/database"
	"jordanella.com/animix-go/internal/events"
	"jordanella.com/animix-go/internal/game"
	"jordanella.com/animix-go/internal/logging"
)

// fakeRunner runs accounts through a per-index function and tracks how many
// run at once
type fakeRunner struct {
	run func(ctx context.Context, account accounts.Account) (*Report, error)

	mu       sync.Mutex
	order    []int
	running  int32
	maxSeen  int32
	finished int32
}

func (f *fakeRunner) RunAccount(ctx context.Context, account accounts.Account) (*Report, error) {
	now := atomic.AddInt32(&f.running, 1)
	defer atomic.AddInt32(&f.running, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if now <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, now) {
			break
		}
	}

	f.mu.Lock()
	f.order = append(f.order, account.Index)
	f.mu.Unlock()
	defer atomic.AddInt32(&f.finished, 1)

	if f.run != nil {
		return f.run(ctx, account)
	}
	time.Sleep(10 * time.Millisecond)
	return &Report{Name: fmt.Sprintf("acc%d", account.Index)}, nil
}

// recordingBus captures published events synchronously
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.EventHandler) events.SubscriptionID {
	return 0
}
func (b *recordingBus) Unsubscribe(events.SubscriptionID) {}
func (b *recordingBus) Stop()                             {}
func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) count(t events.EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func makeAccounts(n int) []accounts.Account {
	list := make([]accounts.Account, n)
	for i := range list {
		list[i] = accounts.Account{Index: i, InitData: fmt.Sprintf("user=%%7B%%22id%%22%%3A%d%%7D", 100+i)}
	}
	return list
}

func quietLogger() *logging.Logger {
	return logging.NewLogger("Fleet").SetOutput(io.Discard)
}

func testFleetConfig(threads int) *bot.Config {
	return &bot.Config{
		MaxThreads:        threads,
		MaxThreadsNoProxy: threads,
		TimeSleep:         1,
		AccountTimeout:    time.Second,
	}
}

func newTestCoordinator(cfg *bot.Config, list []accounts.Account, runner AccountRunner, bus events.EventBus, db *database.DB) *FleetCoordinator {
	reporter := logging.NewErrorReporter()
	reporter.SetLogger(quietLogger())
	return NewFleetCoordinator(Options{
		Config:        cfg,
		Accounts:      list,
		Runner:        runner,
		DB:            db,
		EventBus:      bus,
		ErrorReporter: reporter,
		Logger:        quietLogger(),
		Countdown:     io.Discard,
	})
}

func TestRunPassBoundsConcurrency(t *testing.T) {
	runner := &fakeRunner{}
	bus := &recordingBus{}
	c := newTestCoordinator(testFleetConfig(2), makeAccounts(5), runner, bus, nil)

	result := c.RunPass(context.Background(), 1)

	assert.Equal(t, 5, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.LessOrEqual(t, atomic.LoadInt32(&runner.maxSeen), int32(2))
	assert.NotEmpty(t, result.ID)

	assert.Equal(t, 1, bus.count(events.EventTypePassStarted))
	assert.Equal(t, 3, bus.count(events.EventTypeBatchFinished))
	assert.Equal(t, 5, bus.count(events.EventTypeAccountStarted))
	assert.Equal(t, 5, bus.count(events.EventTypeAccountCompleted))
	assert.Equal(t, 1, bus.count(events.EventTypePassCompleted))
}

func TestRunPassDrainsBatchBeforeNext(t *testing.T) {
	var firstBatchDone int32
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if account.Index < 2 {
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt32(&firstBatchDone, 1)
			return &Report{}, nil
		}
		if atomic.LoadInt32(&firstBatchDone) != 2 {
			return nil, errors.New("second batch started early")
		}
		return &Report{}, nil
	}
	c := newTestCoordinator(testFleetConfig(2), makeAccounts(4), runner, nil, nil)

	result := c.RunPass(context.Background(), 1)
	assert.Equal(t, 4, result.Succeeded, result.Errors)
}

func TestFailedAccountDoesNotStopOthers(t *testing.T) {
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if account.Index == 1 {
			return nil, fmt.Errorf("%w: boom", bot.ErrNoProfile)
		}
		return &Report{}, nil
	}
	bus := &recordingBus{}
	c := newTestCoordinator(testFleetConfig(3), makeAccounts(3), runner, bus, nil)

	result := c.RunPass(context.Background(), 1)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Account 2")
	assert.Equal(t, 1, bus.count(events.EventTypeAccountFailed))
	assert.Equal(t, 1, c.reporter.GetErrorStats()["category_account"])
}

func TestBatchFailuresAreLogged(t *testing.T) {
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if account.Index == 0 {
			return nil, errors.New("connection reset")
		}
		return &Report{}, nil
	}
	c := newTestCoordinator(testFleetConfig(2), makeAccounts(2), runner, nil, nil)
	var buf bytes.Buffer
	c.logger = logging.NewLogger("Fleet").SetOutput(&buf)

	c.RunPass(context.Background(), 1)

	out := buf.String()
	assert.Contains(t, out, "Batch finished with 1 failed accounts")
	assert.Contains(t, out, "Account 1: connection reset")
	assert.NotContains(t, out, "Account 2:")
}

func TestAccountTimeout(t *testing.T) {
	cfg := testFleetConfig(2)
	cfg.AccountTimeout = 20 * time.Millisecond

	release := make(chan struct{})
	defer close(release)
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if account.Index == 0 {
			// ignores cancellation on purpose
			<-release
			return &Report{}, nil
		}
		return &Report{}, nil
	}
	c := newTestCoordinator(cfg, makeAccounts(2), runner, nil, nil)

	start := time.Now()
	result := c.RunPass(context.Background(), 1)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors[0], ErrAccountTimeout.Error())
	assert.Equal(t, 1, c.reporter.GetErrorStats()["category_timeout"])
}

func TestRunPassStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := newTestCoordinator(testFleetConfig(1), makeAccounts(3), runner, nil, nil)

	result := c.RunPass(ctx, 1)

	runner.mu.Lock()
	assert.Len(t, runner.order, 1)
	runner.mu.Unlock()
	assert.Equal(t, 1, result.Failed)
}

func TestRunOnceReturnsAfterFirstPass(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestCoordinator(testFleetConfig(4), makeAccounts(2), runner, nil, nil)
	c.runOnce = true

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.finished))
}

func TestRunLoopsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var passes int32
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if atomic.AddInt32(&passes, 1) == 2 {
			cancel()
		}
		return &Report{}, nil
	}
	cfg := testFleetConfig(1)
	cfg.TimeSleep = 0
	c := newTestCoordinator(cfg, makeAccounts(1), runner, nil, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("fleet loop did not stop")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&passes), int32(2))
}

func TestRunPassRecordsHistory(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	defer db.Close()
	db.SetLogger(quietLogger())
	require.NoError(t, db.RunMigrations())

	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		if account.Index == 1 {
			return &Report{EgressIP: "10.0.0.2"}, fmt.Errorf("%w: refused", bot.ErrProxyIdentity)
		}
		state := &bot.State{}
		state.Gacha.Drawn = 11
		state.Missions.Claimed = []game.ID{"1", "2"}
		return &Report{EgressIP: "10.0.0.1", State: state}, nil
	}
	c := newTestCoordinator(testFleetConfig(2), makeAccounts(2), runner, nil, db)

	result := c.RunPass(context.Background(), 1)

	pass, err := db.GetPass(result.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusCompleted, pass.Status)
	assert.Equal(t, 1, pass.Succeeded)
	assert.Equal(t, 1, pass.Failed)

	runs, err := db.GetRunsForPass(result.ID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	byIndex := map[int]*database.AccountRun{}
	for _, r := range runs {
		byIndex[r.AccountIndex] = r
	}
	assert.Equal(t, database.StatusCompleted, byIndex[0].Status)
	assert.Equal(t, 11, byIndex[0].GachaDraws)
	assert.Equal(t, 2, byIndex[0].MissionsClaimed)
	assert.Equal(t, database.StatusFailed, byIndex[1].Status)

	errs, err := db.GetRecentErrors(10)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, string(logging.ErrorCategoryProxy), errs[0].ErrorCategory)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		err  error
		want logging.ErrorCategory
	}{
		{fmt.Errorf("%w after 24h", ErrAccountTimeout), logging.ErrorCategoryTimeout},
		{fmt.Errorf("%w: dial", bot.ErrProxyIdentity), logging.ErrorCategoryProxy},
		{fmt.Errorf("%w: 401", bot.ErrNoProfile), logging.ErrorCategoryAccount},
		{context.Canceled, logging.ErrorCategoryScheduler},
		{errors.New("connection reset"), logging.ErrorCategoryNetwork},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorize(tt.err), tt.err.Error())
	}
}

func TestActiveAccountTracking(t *testing.T) {
	started := make(chan struct{})
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, account accounts.Account) (*Report, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	cfg := testFleetConfig(1)
	cfg.AccountTimeout = time.Minute
	c := newTestCoordinator(cfg, makeAccounts(1), runner, nil, nil)

	done := make(chan *PassResult, 1)
	go func() { done <- c.RunPass(context.Background(), 1) }()

	<-started
	assert.Equal(t, []int{0}, c.GetActiveAccounts())
	assert.Equal(t, 1, c.GetActiveAccountCount())
	require.NoError(t, c.StopAccount(0))
	assert.Error(t, c.StopAccount(5))

	result := <-done
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, c.GetActiveAccountCount())
}

func TestCountdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Countdown(context.Background(), &buf, 30*time.Millisecond, 10*time.Millisecond))
	out := buf.String()
	assert.Contains(t, out, "Wait 0 minute 0 seconds to continue")
	assert.Contains(t, out, "Start new loop...")

	buf.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Countdown(ctx, &buf, time.Minute, time.Second), context.Canceled)
	assert.NotContains(t, buf.String(), "Start new loop")
}

func TestCountdownText(t *testing.T) {
	assert.Equal(t, "Wait 2 minute 5 seconds to continue", countdownText(125*time.Second))
	assert.Equal(t, "Wait 120 minute 0 seconds to continue", countdownText(2*time.Hour))
}
