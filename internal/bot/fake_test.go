package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jordanella.com/animix-go/internal/game"
)

type recordedCall struct {
	Op   string
	Body map[string]any
}

type handlerFunc func(body map[string]any) (any, error)

// fakeGame is an in-memory game backend keyed by operation name
type fakeGame struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    []recordedCall
}

func newFakeGame() *fakeGame {
	return &fakeGame{handlers: make(map[string]handlerFunc)}
}

func (f *fakeGame) on(op game.Operation, h handlerFunc) *fakeGame {
	f.handlers[op.Name] = h
	return f
}

// reply registers a fixed JSON result
func (f *fakeGame) reply(op game.Operation, result string) *fakeGame {
	return f.on(op, func(map[string]any) (any, error) {
		return json.RawMessage(result), nil
	})
}

func (f *fakeGame) fail(op game.Operation) *fakeGame {
	return f.on(op, func(map[string]any) (any, error) {
		return nil, fmt.Errorf("%s: status 500", op.Name)
	})
}

func (f *fakeGame) Request(_ context.Context, op game.Operation, body any) (json.RawMessage, error) {
	decoded := map[string]any{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Op: op.Name, Body: decoded})
	h := f.handlers[op.Name]
	f.mu.Unlock()

	if h == nil {
		return nil, fmt.Errorf("%s: not stubbed", op.Name)
	}
	v, err := h(decoded)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (f *fakeGame) callsTo(op game.Operation) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Op == op.Name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGame) opNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.Op
	}
	return names
}

func testConfig() *Config {
	return &Config{
		MaxThreads:        2,
		MaxThreadsNoProxy: 2,
		MaxAmountGacha:    100,
		AutoMergePet:      true,
		TargetClanID:      178,
		BaseURL:           "http://game.test",
		DataFile:          "data.txt",
		ProxyFile:         "proxy.txt",
		AccountTimeout:    time.Hour,
	}
}

func newTestBot(f *fakeGame, cfg *Config) *Bot {
	if cfg == nil {
		cfg = testConfig()
	}
	return New(game.NewClient(f), Options{
		Account: AccountContext{Index: 0, Name: "tester"},
		Config:  cfg,
	})
}
