package owm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/weatherdesk/weatherdesk/internal/owm"
)

const testKey = "abcdef1234567890"

const currentWeatherBody = `{
	"name": "Melbourne",
	"coord": {"lat": -37.814, "lon": 144.963},
	"weather": [{"id": 802, "main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
	"main": {"temp": 18.5, "feels_like": 17.9, "temp_min": 16.0, "temp_max": 21.0, "pressure": 1015, "humidity": 62},
	"wind": {"speed": 4.6, "deg": 200},
	"visibility": 10000,
	"dt": 1700000000,
	"sys": {"country": "AU", "sunrise": 1699990000, "sunset": 1700040000}
}`

func newClient(t *testing.T, cfg owm.ClientConfig) *owm.Client {
	t.Helper()
	cfg.APIKey = testKey
	client, err := owm.New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := owm.New(owm.ClientConfig{})
	if !owm.IsKind(err, owm.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestCurrentByCity(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Melbourne,AU" {
			t.Errorf("q = %q, want Melbourne,AU", got)
		}
		if got := r.URL.Query().Get("appid"); got != testKey {
			t.Errorf("appid = %q, want %q", got, testKey)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric", got)
		}
		w.Write([]byte(currentWeatherBody))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	raw, err := client.CurrentByCity(context.Background(), "Melbourne", "AU", owm.UnitsMetric)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Name != "Melbourne" {
		t.Errorf("name = %q, want Melbourne", raw.Name)
	}
}

func TestKelvinOmitsUnitsParam(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["units"]; ok {
			t.Error("units param present, kelvin should omit it")
		}
		w.Write([]byte(currentWeatherBody))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	if _, err := client.CurrentByCity(context.Background(), "Melbourne", "", owm.UnitsKelvin); err != nil {
		t.Fatal(err)
	}
}

func TestCoordinatesRoundTrip(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("lat"); got != "-37.814" {
			t.Errorf("lat = %q, want -37.814", got)
		}
		w.Write([]byte(currentWeatherBody))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	raw, err := client.CurrentByCoords(context.Background(), -37.814, 144.963, "")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := owm.NormalizeCurrent(raw)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Latitude != -37.814 || snap.Longitude != 144.963 {
		t.Errorf("coordinates = %v,%v, want -37.814,144.963", snap.Latitude, snap.Longitude)
	}
}

func TestFallbackOnAuthFailure(t *testing.T) {
	t.Parallel()
	var primaryCalls, freeCalls atomic.Int64

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer primary.Close()

	free := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		freeCalls.Add(1)
		w.Write([]byte(currentWeatherBody))
	}))
	defer free.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: primary.URL, FreeBaseURL: free.URL})
	raw, err := client.CurrentByCity(context.Background(), "Melbourne", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Name != "Melbourne" {
		t.Errorf("name = %q, want Melbourne (secondary body)", raw.Name)
	}
	if primaryCalls.Load() != 1 || freeCalls.Load() != 1 {
		t.Errorf("calls = %d primary, %d free; want exactly 1 each", primaryCalls.Load(), freeCalls.Load())
	}
}

func TestAuthFailureOnBothEndpoints(t *testing.T) {
	t.Parallel()
	deny := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	primary := httptest.NewServer(deny)
	defer primary.Close()
	free := httptest.NewServer(deny)
	defer free.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: primary.URL, FreeBaseURL: free.URL})
	_, err := client.CurrentByCity(context.Background(), "Melbourne", "", "")
	if !owm.IsKind(err, owm.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}

	var apiErr *owm.Error
	errors.As(err, &apiErr)
	if len(apiErr.Endpoints) != 2 {
		t.Fatalf("endpoints = %v, want both attempted", apiErr.Endpoints)
	}
	msg := err.Error()
	if !strings.Contains(msg, primary.URL) || !strings.Contains(msg, free.URL) {
		t.Errorf("error message should reference both endpoints: %s", msg)
	}
	if !strings.Contains(msg, "abcdef12...") {
		t.Errorf("error message should include the masked key prefix: %s", msg)
	}
	if strings.Contains(msg, testKey) {
		t.Errorf("error message leaks the full API key: %s", msg)
	}
}

func TestNoFallbackOnNotFound(t *testing.T) {
	t.Parallel()
	var freeCalls atomic.Int64
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()
	free := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		freeCalls.Add(1)
		w.Write([]byte(currentWeatherBody))
	}))
	defer free.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: primary.URL, FreeBaseURL: free.URL})
	_, err := client.CurrentByCity(context.Background(), "Nowhereville", "", "")
	if !owm.IsKind(err, owm.KindNotFound) {
		t.Fatalf("expected location not found, got %v", err)
	}
	if freeCalls.Load() != 0 {
		t.Errorf("free endpoint called %d times on 404, want 0", freeCalls.Load())
	}
}

func TestStatusMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		want   owm.Kind
	}{
		{"not found", http.StatusNotFound, owm.KindNotFound},
		{"rate limited", http.StatusTooManyRequests, owm.KindRateLimited},
		{"server error", http.StatusInternalServerError, owm.KindNetwork},
		{"bad gateway", http.StatusBadGateway, owm.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
			_, err := client.CurrentByCity(context.Background(), "Melbourne", "", "")
			if !owm.IsKind(err, tt.want) {
				t.Fatalf("status %d: expected kind %v, got %v", tt.status, tt.want, err)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	_, err := client.CurrentByCity(context.Background(), "Melbourne", "", "")
	if !owm.IsKind(err, owm.KindNetwork) {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestMalformedResponseBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	_, err := client.CurrentByCity(context.Background(), "Melbourne", "", "")
	if !owm.IsKind(err, owm.KindMalformed) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestGeocodeEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{GeocodingURL: srv.URL})
	results, err := client.GeocodeCity(context.Background(), "Nowhereville", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestGeocodeDefaultLimit(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Write([]byte(`[{"name": "Bright", "lat": -36.729, "lon": 146.968, "country": "AU", "state": "Victoria"}]`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{GeocodingURL: srv.URL})
	results, err := client.GeocodeCity(context.Background(), "Bright", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Country != "AU" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestReverseGeocode(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/reverse") {
			t.Errorf("path = %q, want /reverse suffix", r.URL.Path)
		}
		w.Write([]byte(`[{"name": "Wandiligong", "lat": -36.794, "lon": 146.977, "country": "AU"}]`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{GeocodingURL: srv.URL})
	results, err := client.ReverseGeocode(context.Background(), -36.794, 146.977, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "Wandiligong" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestHistoricalRangeSkipsFailedDays(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"lat": -36.794, "lon": 146.977, "timezone": "Australia/Melbourne", "current": {"dt": 1700000000, "temp": 12.0}}`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{HistoryURL: srv.URL})
	start := mustDate(t, "2026-03-01")
	end := mustDate(t, "2026-03-05")

	results, err := client.HistoricalRange(context.Background(), -36.794, 146.977, start, end, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4 (day 3 skipped)", len(results))
	}
	if calls.Load() != 5 {
		t.Errorf("requests = %d, want 5 (one per day)", calls.Load())
	}
}

func TestHourlyForecastExcludesMinutelyAndAlerts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("exclude"); got != "minutely,alerts" {
			t.Errorf("exclude = %q, want minutely,alerts", got)
		}
		w.Write([]byte(`{"lat": -36.794, "lon": 146.977, "timezone": "Australia/Melbourne", "hourly": [{"dt": 1700000000, "temp": 12.0}]}`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{OneCallURL: srv.URL})
	resp, err := client.HourlyForecast(context.Background(), -36.794, 146.977, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hourly) != 1 {
		t.Errorf("hourly entries = %d, want 1", len(resp.Hourly))
	}
}

func TestDailyForecastDefaultsTo16Days(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cnt"); got != "16" {
			t.Errorf("cnt = %q, want 16", got)
		}
		w.Write([]byte(`{"city": {"name": "Bright"}, "cnt": 16, "list": []}`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	if _, err := client.DailyForecast(context.Background(), -36.729, 146.968, 0, ""); err != nil {
		t.Fatal(err)
	}
}

func TestAirPollutionHistoryParams(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/history") {
			t.Errorf("path = %q, want /history suffix", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("start") == "" || q.Get("end") == "" {
			t.Error("start/end params missing")
		}
		w.Write([]byte(`{"coord": {"lat": -36.794, "lon": 146.977}, "list": [{"dt": 1700000000, "main": {"aqi": 2}, "components": {"pm2_5": 4.1}}]}`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{PollutionURL: srv.URL})
	resp, err := client.AirPollutionHistory(context.Background(), -36.794, 146.977, mustDate(t, "2026-03-01"), mustDate(t, "2026-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.List) != 1 || resp.List[0].Main.AQI != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// countingTransport fails every request and records how many were
// attempted.
type countingTransport struct {
	calls atomic.Int64
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, errors.New("network disabled")
}

func TestMapTileURLMakesNoNetworkCall(t *testing.T) {
	t.Parallel()
	transport := &countingTransport{}
	client := newClient(t, owm.ClientConfig{})
	client.SetHTTPClient(&http.Client{Transport: transport})

	url := client.MapTileURL("temp_new", 5, 10, 15)
	if !strings.Contains(url, "temp_new/5/10/15.png") {
		t.Errorf("url = %q, want temp_new/5/10/15.png segment", url)
	}
	if !strings.Contains(url, "appid="+testKey) {
		t.Errorf("url = %q, want configured key", url)
	}
	if transport.calls.Load() != 0 {
		t.Errorf("transport invoked %d times, want 0", transport.calls.Load())
	}
}

func TestAccumulatedTemperatureParams(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/accumulation/temperature") {
			t.Errorf("path = %q, want /accumulation/temperature suffix", r.URL.Path)
		}
		if got := r.URL.Query().Get("threshold"); got != "10" {
			t.Errorf("threshold = %q, want 10", got)
		}
		w.Write([]byte(`[{"date": "2026-3-1", "temp": 284.5, "count": 24}]`))
	}))
	defer srv.Close()

	client := newClient(t, owm.ClientConfig{BaseURL: srv.URL, FreeBaseURL: srv.URL})
	raw, err := client.AccumulatedTemperature(context.Background(), -36.794, 146.977, 10, mustDate(t, "2026-03-01"), mustDate(t, "2026-03-05"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "284.5") {
		t.Errorf("raw = %s, want passthrough body", raw)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
