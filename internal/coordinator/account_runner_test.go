package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/api"
	"jordanella.com/animix-go/internal/bot"
	"jordanella.com/animix-go/internal/session"
)

const testInitData = "query_id=q1&user=%7B%22id%22%3A4242%2C%22first_name%22%3A%22Ada%22%2C%22last_name%22%3A%22L%22%7D"

// quietGame answers every read with an empty account and records paths
func quietGame(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var paths []string
	results := map[string]string{
		"/public/user/info":        `{"full_name":"Ada L","token":12.5,"god_power":0,"clain_id":178}`,
		"/public/pet/dna/list":     `[]`,
		"/public/pet/list":         `[]`,
		"/public/mission/list":     `[]`,
		"/public/quest/list":       `{"quests":[]}`,
		"/public/achievement/list": `{}`,
		"/public/season-pass/list": `[]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		assert.Equal(t, testInitData, r.Header.Get("tg-init-data"))

		result, ok := results[r.URL.Path]
		if !ok {
			http.Error(w, "unexpected", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func newTestRunner(t *testing.T, baseURL string, cfg *bot.Config) (*SessionRunner, *session.UserAgentStore) {
	t.Helper()
	catalogue, err := session.DefaultCatalogue()
	require.NoError(t, err)
	store, err := session.OpenUserAgentStore(filepath.Join(t.TempDir(), "agents.json"), catalogue)
	require.NoError(t, err)
	return NewSessionRunner(cfg, baseURL, store, quietLogger()), store
}

func runnerConfig() *bot.Config {
	return &bot.Config{
		MaxThreadsNoProxy: 1,
		MaxAmountGacha:    100,
		AutoMergePet:      true,
		TargetClanID:      178,
	}
}

func TestSessionRunnerRunsAccount(t *testing.T) {
	srv, paths := quietGame(t)
	runner, store := newTestRunner(t, srv.URL, runnerConfig())

	report, err := runner.RunAccount(context.Background(), accounts.Account{Index: 0, InitData: testInitData})
	require.NoError(t, err)

	assert.Equal(t, "Ada L", report.Name)
	assert.Empty(t, report.EgressIP)
	require.NotNil(t, report.State)
	assert.Equal(t, "Ada L", report.State.FullName)
	assert.Equal(t, 178, report.State.ClanID)

	_, assigned := store.Get("4242")
	assert.True(t, assigned)
	assert.Equal(t, "/public/user/info", paths()[0])
	assert.NotContains(t, paths(), "/public/clan/join")
}

func TestSessionRunnerRejectsBadInitData(t *testing.T) {
	runner, _ := newTestRunner(t, "http://game.invalid", runnerConfig())

	_, err := runner.RunAccount(context.Background(), accounts.Account{InitData: "garbage"})
	assert.ErrorIs(t, err, session.ErrInvalidInitData)
}

func TestSessionRunnerResolvesProxyIdentity(t *testing.T) {
	game, _ := quietGame(t)

	// A plain HTTP proxy that serves the IP echo itself and forwards the rest
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Host == "ip.test" {
			_, _ = w.Write([]byte(`{"ip":"203.0.113.7"}`))
			return
		}
		req, err := http.NewRequestWithContext(r.Context(), r.Method, r.URL.String(), r.Body)
		require.NoError(t, err)
		req.Header = r.Header.Clone()
		resp, err := http.DefaultTransport.RoundTrip(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		w.WriteHeader(resp.StatusCode)
		buf := make([]byte, 32*1024)
		for {
			n, err := resp.Body.Read(buf)
			_, _ = w.Write(buf[:n])
			if err != nil {
				break
			}
		}
	}))
	defer proxy.Close()

	cfg := runnerConfig()
	cfg.UseProxy = true
	runner, _ := newTestRunner(t, game.URL, cfg)
	runner.SetIPResolver(&api.IPResolver{URL: "http://ip.test/"})

	report, err := runner.RunAccount(context.Background(), accounts.Account{InitData: testInitData, Proxy: proxy.URL})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", report.EgressIP)
}

func TestSessionRunnerIdentityFailureAborts(t *testing.T) {
	srv, paths := quietGame(t)
	cfg := runnerConfig()
	cfg.UseProxy = true
	runner, _ := newTestRunner(t, srv.URL, cfg)
	runner.SetIPResolver(&api.IPResolver{URL: srv.URL + "/no-ip"})

	// The game server doubles as a proxy that refuses the echo request
	_, err := runner.RunAccount(context.Background(), accounts.Account{InitData: testInitData, Proxy: srv.URL})
	assert.ErrorIs(t, err, bot.ErrProxyIdentity)
	assert.NotContains(t, paths(), "/public/user/info")
}

func TestPrepareAssignsEveryAccount(t *testing.T) {
	runner, store := newTestRunner(t, "http://game.invalid", runnerConfig())

	list := []accounts.Account{
		{Index: 0, InitData: testInitData},
		{Index: 1, InitData: "user=%7B%22id%22%3A7%7D"},
		{Index: 2, InitData: "broken"},
	}
	require.NoError(t, runner.Prepare(list))
	assert.Equal(t, 2, store.Len())
}

func TestStartDelayWithinRange(t *testing.T) {
	cfg := runnerConfig()
	cfg.DelayStartBotMin, cfg.DelayStartBotMax = 3, 5
	runner, _ := newTestRunner(t, "http://game.invalid", cfg)

	for i := 0; i < 50; i++ {
		d := runner.startDelay().Seconds()
		assert.GreaterOrEqual(t, d, 3.0)
		assert.LessOrEqual(t, d, 5.0)
	}

	cfg.DelayStartBotMin, cfg.DelayStartBotMax = 4, 4
	assert.Equal(t, 4.0, runner.startDelay().Seconds())
}
