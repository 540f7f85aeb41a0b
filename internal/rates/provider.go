package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Provider fetches current INR exchange rates from an upstream source.
type Provider interface {
	Fetch(ctx context.Context) ([]Rate, error)
}

// HTTPProvider pulls rates from a JSON endpoint of the shape
// {"base":"INR","rates":{"USD":83.12,"EUR":90.45}}.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPProvider) Fetch(ctx context.Context) ([]Rate, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}

	now := time.Now().UTC()
	out := make([]Rate, 0, len(body.Rates))
	for currency, value := range body.Rates {
		if value <= 0 {
			continue
		}
		out = append(out, Rate{Currency: currency, Rate: value, FetchedAt: now})
	}
	return out, nil
}
