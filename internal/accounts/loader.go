package accounts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrProxyMismatch is returned when proxy mode has fewer proxies than accounts
var ErrProxyMismatch = errors.New("proxy count does not cover account count")

// ErrNoAccounts is returned when the data file has no usable lines
var ErrNoAccounts = errors.New("no accounts found")

// Account is one line of the data file bound to its optional proxy
type Account struct {
	Index    int    // 0-based position in the data file
	InitData string // opaque Telegram init-data, sent as tg-init-data
	Proxy    string // empty when running direct
}

// Number is the 1-based index shown in logs
func (a Account) Number() int {
	return a.Index + 1
}

// LoadLines reads a line-oriented list file. Carriage returns are stripped
// and blank lines dropped.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	// init-data strings can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "\r", ""))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// LoadAccounts reads the data file into unbound accounts
func LoadAccounts(path string) ([]Account, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoAccounts)
	}
	accounts := make([]Account, len(lines))
	for i, line := range lines {
		accounts[i] = Account{Index: i, InitData: line}
	}
	return accounts, nil
}

// LoadProxies reads the proxy file. A missing file yields no proxies.
func LoadProxies(path string) ([]string, error) {
	lines, err := LoadLines(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return lines, err
}

// BindProxies assigns proxies[i % len(proxies)] to each account. In strict
// mode every account must have a proxy of its own.
func BindProxies(accounts []Account, proxies []string, strict bool) ([]Account, error) {
	if strict && len(accounts) > len(proxies) {
		return nil, fmt.Errorf("%w: %d accounts, %d proxies", ErrProxyMismatch, len(accounts), len(proxies))
	}

	bound := make([]Account, len(accounts))
	copy(bound, accounts)
	if len(proxies) == 0 {
		return bound, nil
	}
	for i := range bound {
		bound[i].Proxy = proxies[i%len(proxies)]
	}
	return bound, nil
}
