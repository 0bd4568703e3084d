package session

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed useragents.yaml
var defaultCatalogue []byte

// ErrEmptyCatalogue is returned when a catalogue lists no user agents
var ErrEmptyCatalogue = errors.New("user agent catalogue is empty")

// Catalogue is the pool of user agents handed out to new sessions
type Catalogue struct {
	UserAgents []string `yaml:"user_agents"`
}

// DefaultCatalogue returns the built-in catalogue
func DefaultCatalogue() (*Catalogue, error) {
	return parseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads a catalogue file. An empty path yields the built-in one.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user agent file: %w", err)
	}
	return parseCatalogue(data)
}

func parseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse user agent catalogue: %w", err)
	}
	if len(c.UserAgents) == 0 {
		return nil, ErrEmptyCatalogue
	}
	return &c, nil
}

// Random picks a user agent uniformly
func (c *Catalogue) Random() string {
	return c.UserAgents[rand.IntN(len(c.UserAgents))]
}
