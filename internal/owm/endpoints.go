package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/weatherdesk/weatherdesk/internal/metrics"
)

const (
	// DefaultForecastDays is the daily forecast horizon (Student Pack
	// extends this to 16 days).
	DefaultForecastDays = 16

	// DefaultGeocodeLimit caps geocoding candidate lists.
	DefaultGeocodeLimit = 5

	// rangePause is the fixed delay between successive requests in
	// range fetches, to stay under the provider's per-minute limit.
	rangePause = 100 * time.Millisecond
)

// weatherBases returns the fallback chain for endpoints served from
// the premium base URL: premium first, free tier second.
func (c *Client) weatherBases() []string {
	return []string{c.cfg.BaseURL, c.cfg.FreeBaseURL}
}

// keyParams builds query values for endpoints that take no unit
// system (pollution, geocoding, statistics).
func (c *Client) keyParams() url.Values {
	v := url.Values{}
	v.Set("appid", c.cfg.APIKey)
	return v
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CurrentByCity fetches current conditions for a city name, optionally
// qualified by an ISO 3166 country code.
func (c *Client) CurrentByCity(ctx context.Context, city, countryCode string, units Units) (*CurrentWeatherResponse, error) {
	location := city
	if countryCode != "" {
		location = city + "," + countryCode
	}
	p := c.params(units)
	p.Set("q", location)

	var out CurrentWeatherResponse
	if err := c.get(ctx, c.weatherBases(), "weather", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentByCoords fetches current conditions for a coordinate pair.
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64, units Units) (*CurrentWeatherResponse, error) {
	p := c.params(units)
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))

	var out CurrentWeatherResponse
	if err := c.get(ctx, c.weatherBases(), "weather", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HourlyForecast fetches the one-call forecast with minutely and alert
// blocks excluded (hourly data covers 4 days on the Student Pack).
func (c *Client) HourlyForecast(ctx context.Context, lat, lon float64, units Units) (*OneCallResponse, error) {
	p := c.params(units)
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("exclude", "minutely,alerts")

	var out OneCallResponse
	if err := c.get(ctx, []string{c.cfg.OneCallURL}, "", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailyForecast fetches the daily forecast list. days <= 0 requests
// the full 16-day horizon.
func (c *Client) DailyForecast(ctx context.Context, lat, lon float64, days int, units Units) (*DailyForecastResponse, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}
	p := c.params(units)
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("cnt", strconv.Itoa(days))

	var out DailyForecastResponse
	if err := c.get(ctx, c.weatherBases(), "forecast/daily", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Historical fetches weather for a single past date (archive reaches
// back one year).
func (c *Client) Historical(ctx context.Context, lat, lon float64, date time.Time, units Units) (*OneCallResponse, error) {
	p := c.params(units)
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("dt", strconv.FormatInt(date.Unix(), 10))

	var out OneCallResponse
	if err := c.get(ctx, []string{c.cfg.HistoryURL}, "", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoricalRange fetches one result per day between start and end
// inclusive. A failing day is logged and skipped; the range never
// aborts as a whole. Requests are paced with a fixed delay.
func (c *Client) HistoricalRange(ctx context.Context, lat, lon float64, start, end time.Time, units Units) ([]*OneCallResponse, error) {
	var results []*OneCallResponse

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return results, &Error{Kind: KindNetwork, Message: "range fetch interrupted", Err: err}
		}

		res, err := c.Historical(ctx, lat, lon, day, units)
		if err != nil {
			log.Printf("owm: skipping %s in historical range: %v", day.Format("2006-01-02"), err)
			metrics.HistoryDaysSkipped.Inc()
		} else {
			results = append(results, res)
		}

		if day.AddDate(0, 0, 1).After(end) {
			break
		}
		time.Sleep(rangePause)
	}

	return results, nil
}

// AirPollutionCurrent fetches the current air quality reading.
func (c *Client) AirPollutionCurrent(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error) {
	return c.airPollution(ctx, "current", lat, lon, nil)
}

// AirPollutionForecast fetches the 5-day air quality forecast.
func (c *Client) AirPollutionForecast(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error) {
	return c.airPollution(ctx, "forecast", lat, lon, nil)
}

// AirPollutionHistory fetches air quality readings between start and
// end.
func (c *Client) AirPollutionHistory(ctx context.Context, lat, lon float64, start, end time.Time) (*AirPollutionResponse, error) {
	extra := url.Values{}
	extra.Set("start", strconv.FormatInt(start.Unix(), 10))
	extra.Set("end", strconv.FormatInt(end.Unix(), 10))
	return c.airPollution(ctx, "history", lat, lon, extra)
}

func (c *Client) airPollution(ctx context.Context, path string, lat, lon float64, extra url.Values) (*AirPollutionResponse, error) {
	p := c.keyParams()
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	for k, vs := range extra {
		for _, v := range vs {
			p.Add(k, v)
		}
	}

	var out AirPollutionResponse
	if err := c.get(ctx, []string{c.cfg.PollutionURL}, path, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeocodeCity resolves a city name to candidate coordinates. An empty
// slice means no match; that is not an error.
func (c *Client) GeocodeCity(ctx context.Context, city string, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = DefaultGeocodeLimit
	}
	p := c.keyParams()
	p.Set("q", city)
	p.Set("limit", strconv.Itoa(limit))

	var out []GeocodeResult
	if err := c.get(ctx, []string{c.cfg.GeocodingURL}, "direct", p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReverseGeocode resolves coordinates to candidate place names.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = DefaultGeocodeLimit
	}
	p := c.keyParams()
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("limit", strconv.Itoa(limit))

	var out []GeocodeResult
	if err := c.get(ctx, []string{c.cfg.GeocodingURL}, "reverse", p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StatisticalWeather fetches aggregated climate statistics for a date
// range. The payload shape varies by aggregation level, so the raw
// JSON is returned as-is.
func (c *Client) StatisticalWeather(ctx context.Context, lat, lon float64, start, end time.Time) (json.RawMessage, error) {
	p := c.keyParams()
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("start", strconv.FormatInt(start.Unix(), 10))
	p.Set("end", strconv.FormatInt(end.Unix(), 10))

	var out json.RawMessage
	if err := c.get(ctx, []string{c.cfg.StatisticsURL}, "", p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AccumulatedTemperature fetches degree-sum data above the threshold
// between start and end.
func (c *Client) AccumulatedTemperature(ctx context.Context, lat, lon, threshold float64, start, end time.Time, units Units) (json.RawMessage, error) {
	return c.accumulation(ctx, "accumulation/temperature", lat, lon, threshold, start, end, units)
}

// AccumulatedPrecipitation fetches precipitation-sum data above the
// threshold between start and end.
func (c *Client) AccumulatedPrecipitation(ctx context.Context, lat, lon, threshold float64, start, end time.Time, units Units) (json.RawMessage, error) {
	return c.accumulation(ctx, "accumulation/precipitation", lat, lon, threshold, start, end, units)
}

func (c *Client) accumulation(ctx context.Context, path string, lat, lon, threshold float64, start, end time.Time, units Units) (json.RawMessage, error) {
	p := c.params(units)
	p.Set("lat", formatCoord(lat))
	p.Set("lon", formatCoord(lon))
	p.Set("threshold", formatCoord(threshold))
	p.Set("start", strconv.FormatInt(start.Unix(), 10))
	p.Set("end", strconv.FormatInt(end.Unix(), 10))

	var out json.RawMessage
	if err := c.get(ctx, c.weatherBases(), path, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapTileURL builds a weather map tile URL. Pure string construction,
// no network call.
func (c *Client) MapTileURL(layer string, zoom, x, y int) string {
	return fmt.Sprintf("%s/%s/%d/%d/%d.png?appid=%s", c.cfg.MapsURL, layer, zoom, x, y, c.cfg.APIKey)
}

// MapLayers lists the tile layer identifiers the provider serves.
func (c *Client) MapLayers() []string {
	return []string{
		"temp_new",
		"precipitation_new",
		"pressure_new",
		"wind_new",
		"clouds_new",
		"radar",
		"satellite",
		"temp",
		"precipitation",
		"pressure",
		"wind",
		"clouds",
	}
}
