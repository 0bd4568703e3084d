package coordinator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/api"
	"jordanella.com/animix-go/internal/bot"
	"jordanella.com/animix-go/internal/game"
	"jordanella.com/animix-go/internal/logging"
	"jordanella.com/animix-go/internal/session"
)

// SessionRunner is the production AccountRunner. It parses the account's
// init data, binds a user agent and proxy, and runs a bot over HTTP.
type SessionRunner struct {
	config  *bot.Config
	baseURL string
	agents  *session.UserAgentStore
	ip      *api.IPResolver
	logger  *logging.Logger

	intn func(n int) int
}

// NewSessionRunner creates a runner against baseURL
func NewSessionRunner(cfg *bot.Config, baseURL string, agents *session.UserAgentStore, logger *logging.Logger) *SessionRunner {
	if logger == nil {
		logger = logging.NewLogger("Account")
	}
	return &SessionRunner{
		config:  cfg,
		baseURL: baseURL,
		agents:  agents,
		ip:      api.NewIPResolver(),
		logger:  logger,
		intn:    rand.IntN,
	}
}

// SetIPResolver overrides the egress IP echo service
func (r *SessionRunner) SetIPResolver(resolver *api.IPResolver) {
	r.ip = resolver
}

// Prepare assigns a user agent to every account up front. Lines that do not
// parse are skipped here and fail again when the account runs.
func (r *SessionRunner) Prepare(list []accounts.Account) error {
	for _, account := range list {
		user, err := session.ParseInitData(account.InitData)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("Account %d: %v", account.Number(), err))
			continue
		}
		if _, err := r.agents.GetOrAssign(user.ID); err != nil {
			return fmt.Errorf("assign user agent for account %d: %w", account.Number(), err)
		}
	}
	return nil
}

// RunAccount runs one account once
func (r *SessionRunner) RunAccount(ctx context.Context, account accounts.Account) (*Report, error) {
	user, err := session.ParseInitData(account.InitData)
	if err != nil {
		return nil, err
	}
	report := &Report{Name: user.Name()}

	userAgent, err := r.agents.GetOrAssign(user.ID)
	if err != nil {
		return report, fmt.Errorf("assign user agent: %w", err)
	}

	log := r.logger.WithContext(map[string]interface{}{"name": report.Name})
	client, err := api.NewClient(api.Options{
		BaseURL:      r.baseURL,
		InitData:     account.InitData,
		UserAgent:    userAgent,
		Proxy:        account.Proxy,
		FailurePause: time.Duration(r.config.DelayBetweenRequests) * time.Second,
		Logger:       log.With(map[string]interface{}{"account": account.Number()}),
	})
	if err != nil {
		return report, fmt.Errorf("%w: %v", bot.ErrProxyIdentity, err)
	}

	opts := bot.Options{
		Account: bot.AccountContext{
			Index:     account.Index,
			Name:      report.Name,
			InitData:  account.InitData,
			Proxy:     account.Proxy,
			BaseURL:   r.baseURL,
			UserAgent: userAgent,
			Platform:  session.DetectPlatform(userAgent),
		},
		Config: r.config,
		Logger: log,
	}
	if r.config.UseProxy && account.Proxy != "" {
		httpClient := client.HTTPClient()
		opts.Identity = func(ctx context.Context) (string, error) {
			return r.ip.Resolve(ctx, httpClient)
		}
		opts.StartDelay = r.startDelay()
	}

	b := bot.New(game.NewClient(client), opts)
	err = b.Run(ctx)

	report.EgressIP = b.Account().EgressIP
	report.State = b.State()
	return report, err
}

// startDelay picks a whole number of seconds in [DelayStartBotMin, DelayStartBotMax]
func (r *SessionRunner) startDelay() time.Duration {
	lo, hi := r.config.DelayStartBotMin, r.config.DelayStartBotMax
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return time.Duration(lo) * time.Second
	}
	return time.Duration(lo+r.intn(hi-lo+1)) * time.Second
}
