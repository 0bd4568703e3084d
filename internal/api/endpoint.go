package api

import "errors"

// ErrNoEndpoint is returned when no base URL can be determined
var ErrNoEndpoint = errors.New("no API endpoint available")

// knownEndpoints is the built-in catalogue used in anti-detection mode
var knownEndpoints = map[string]string{
	"animix": "https://pro-api.animix.tech",
}

// CheckBaseURL picks the API base. With advanced anti-detection the built-in
// catalogue wins, otherwise the configured URL is used.
func CheckBaseURL(advanced bool, configured string) (string, error) {
	endpoint := configured
	if advanced {
		endpoint = knownEndpoints["animix"]
	}
	if endpoint == "" {
		return "", ErrNoEndpoint
	}
	return endpoint, nil
}
