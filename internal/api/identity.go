package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultIPEchoURL reports the caller's public IP as {"ip": "..."}
const DefaultIPEchoURL = "https://api.ipify.org?format=json"

// IPResolver finds the public IP an HTTP client egresses from
type IPResolver struct {
	URL string
}

// NewIPResolver uses the public ipify echo service
func NewIPResolver() *IPResolver {
	return &IPResolver{URL: DefaultIPEchoURL}
}

// Resolve returns the egress IP seen through client
func (r *IPResolver) Resolve(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build ip request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error checking proxy IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cannot check proxy IP: status code %d", resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode ip response: %w", err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("ip response carried no address")
	}
	return body.IP, nil
}
