package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"jordanella.com/animix-go/internal/game"
	"jordanella.com/animix-go/internal/logging"
)

var (
	// ErrNoProfile aborts an account whose profile could not be fetched
	ErrNoProfile = errors.New("failed to fetch user profile")
	// ErrProxyIdentity aborts an account whose egress IP could not be resolved
	ErrProxyIdentity = errors.New("cannot check proxy IP")
)

// AccountContext describes one account for a single run cycle. Only
// EgressIP changes after construction.
type AccountContext struct {
	Index     int // 0-based
	Name      string
	InitData  string
	Proxy     string
	BaseURL   string
	UserAgent string
	Platform  string
	EgressIP  string
}

// Number is the 1-based index shown in logs
func (a *AccountContext) Number() int {
	return a.Index + 1
}

// IdentityResolver returns the public IP the account's requests leave from
type IdentityResolver func(ctx context.Context) (string, error)

// Options configures a Bot
type Options struct {
	Account    AccountContext
	Config     *Config
	Logger     *logging.ContextLogger
	Identity   IdentityResolver // nil when running direct
	StartDelay time.Duration
}

// Bot runs the action sequence for one account. A Bot is owned by a single
// goroutine and is discarded after Run returns.
type Bot struct {
	account    AccountContext
	client     *game.Client
	config     *Config
	log        *logging.ContextLogger
	identity   IdentityResolver
	startDelay time.Duration
	state      *State

	intn func(n int) int
}

// New creates a bot for one account
func New(client *game.Client, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With(map[string]interface{}{"account": opts.Account.Number()})

	return &Bot{
		account:    opts.Account,
		client:     client,
		config:     opts.Config,
		log:        log,
		identity:   opts.Identity,
		startDelay: opts.StartDelay,
		state:      &State{},
		intn:       rand.IntN,
	}
}

// Account returns the account context, including the resolved egress IP
func (b *Bot) Account() AccountContext {
	return b.account
}

// State returns the counters collected during Run
func (b *Bot) State() *State {
	return b.state
}

// Run resolves the account's identity and executes every stage in order.
// Step failures are logged and skipped; only identity, profile and context
// errors are returned.
func (b *Bot) Run(ctx context.Context) error {
	b.state.StartedAt = time.Now()
	defer func() { b.state.FinishedAt = time.Now() }()

	if err := b.resolveIdentity(ctx); err != nil {
		return err
	}

	b.log.Success(fmt.Sprintf("========= Account %d | %s | %s | starting in %s",
		b.account.Number(), b.account.Name, b.displayIP(), b.startDelay))
	if err := b.pause(ctx, b.startDelay); err != nil {
		return err
	}

	return b.runCycle(ctx)
}

func (b *Bot) resolveIdentity(ctx context.Context) error {
	if b.identity == nil {
		return nil
	}
	ip, err := b.identity(ctx)
	if err != nil {
		b.log.Warn(fmt.Sprintf("Cannot check proxy IP: %v", err))
		return fmt.Errorf("%w: %v", ErrProxyIdentity, err)
	}
	b.account.EgressIP = ip
	b.log = b.log.With(map[string]interface{}{"ip": ip})
	return nil
}

func (b *Bot) displayIP() string {
	if b.account.EgressIP == "" {
		return "direct"
	}
	return b.account.EgressIP
}

// pause sleeps for d or until ctx is done
func (b *Bot) pause(ctx context.Context, d time.Duration) error {
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
