package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weatherdesk/weatherdesk/internal/httputil"
	"github.com/weatherdesk/weatherdesk/internal/metrics"
)

// Client talks to the OpenWeatherMap REST endpoints. It holds no
// state beyond its immutable configuration and the shared HTTP
// client, so concurrent calls are safe.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// New validates cfg, fills unset URL fields with provider defaults
// and returns a ready client. A missing API key is a config error.
func New(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &Error{
			Kind:    KindConfig,
			Message: "OPENWEATHER_API_KEY is required; set it in your environment or .env file",
		}
	}
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		client: httputil.NewClient(),
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client. Intended for
// tests that need to intercept transport-level behaviour.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.client = hc
}

// units resolves the effective unit system for a request. The
// provider expresses Kelvin by omitting the units parameter.
func (c *Client) units(u Units) Units {
	if u == "" {
		u = c.cfg.DefaultUnits
	}
	return u
}

// params builds the base query values shared by every endpoint.
func (c *Client) params(u Units) url.Values {
	v := url.Values{}
	v.Set("appid", c.cfg.APIKey)
	if eu := c.units(u); eu != UnitsKelvin {
		v.Set("units", string(eu))
	}
	return v
}

// get dispatches one GET request against each base URL in order until
// one succeeds. Only authentication/authorization failures (401/403)
// advance to the next base; every other outcome is final. The decoded
// body is written into out.
func (c *Client) get(ctx context.Context, bases []string, path string, params url.Values, out any) error {
	attempted := make([]string, 0, len(bases))

	for i, base := range bases {
		endpoint := joinURL(base, path)
		attempted = append(attempted, endpoint)

		status, body, err := c.do(ctx, endpoint, params)
		if err != nil {
			return &Error{
				Kind:      KindNetwork,
				Message:   "request failed",
				Endpoints: attempted,
				Err:       err,
			}
		}

		if status == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return &Error{
					Kind:      KindMalformed,
					Message:   "decode response body",
					Endpoints: attempted,
					Err:       err,
				}
			}
			return nil
		}

		if (status == http.StatusUnauthorized || status == http.StatusForbidden) && i+1 < len(bases) {
			metrics.FallbackAttemptsTotal.Inc()
			continue
		}

		return c.statusError(status, attempted, body)
	}

	// Unreachable: the last iteration always returns.
	return c.statusError(http.StatusUnauthorized, attempted, nil)
}

// do performs a single GET and returns the status code and body.
// Transport failures (timeout, DNS, refused connections) come back as
// the error.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "WeatherDesk/1.0")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return 0, nil, err
	}
	defer resp.Body.Close()
	metrics.APICallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func (c *Client) statusError(status int, attempted []string, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return c.authError(attempted)
	case http.StatusNotFound:
		return &Error{
			Kind:      KindNotFound,
			Message:   "the provider has no data for this location",
			Endpoints: attempted,
		}
	case http.StatusTooManyRequests:
		return &Error{
			Kind:      KindRateLimited,
			Message:   fmt.Sprintf("rate limit exceeded (%d calls/min on the %s plan); wait before retrying", RateLimitPerMinute, SubscriptionPlan),
			Endpoints: attempted,
		}
	default:
		return &Error{
			Kind:      KindNetwork,
			Message:   fmt.Sprintf("unexpected status %d: %s", status, trimBody(body)),
			Endpoints: attempted,
		}
	}
}

// authError builds the remediation message for authentication
// failures: masked key, every endpoint attempted, and the usual
// activation/subscription checks.
func (c *Client) authError(attempted []string) *Error {
	msg := fmt.Sprintf(
		"API key %s rejected\n"+
			"Plan: %s (%d calls/min, %d calls/month, %d history calls/day)\n"+
			"1. New API keys take up to 2 hours to activate\n"+
			"2. Check subscription status at https://openweathermap.org/price\n"+
			"3. Verify the key at https://home.openweathermap.org/api_keys",
		MaskKey(c.cfg.APIKey), SubscriptionPlan, RateLimitPerMinute, RateLimitPerMonth, HistoryCallsPerDay,
	)
	return &Error{
		Kind:      KindAuth,
		Message:   msg,
		Endpoints: attempted,
	}
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// trimBody keeps provider error bodies short enough for log lines.
func trimBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
