package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/weatherdesk/weatherdesk/internal/config"
	"github.com/weatherdesk/weatherdesk/internal/owm"
)

type Globals struct {
	APIKey  string `help:"OpenWeatherMap API key." env:"OPENWEATHER_API_KEY"`
	Units   string `help:"Unit system: metric, imperial or kelvin." env:"TEMPERATURE_UNITS"`
	City    string `help:"Default city for commands that take none." env:"DEFAULT_CITY"`
	Verbose bool   `help:"Print the resolved configuration at startup." short:"v"`
}

// config resolves the effective configuration: environment first,
// flags override.
func (g *Globals) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if g.APIKey == "" {
			return nil, err
		}
		cfg = config.Default(g.APIKey)
	}
	if g.APIKey != "" {
		cfg.Client.APIKey = g.APIKey
	}
	if g.Units != "" {
		cfg.Client.DefaultUnits = owm.Units(strings.ToLower(g.Units))
	}
	if g.City != "" {
		cfg.DefaultCity = g.City
	}
	if g.Verbose {
		log.Printf("configuration:\n%s", cfg.Summary())
	}
	return cfg, nil
}

func (g *Globals) client() (*owm.Client, *config.Config, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, nil, err
	}
	client, err := owm.New(cfg.Client)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

type CurrentCmd struct {
	CityName string `arg:"" optional:"" help:"City name (defaults to DEFAULT_CITY)."`
	Country  string `help:"ISO 3166 country code, e.g. US or GB."`
}

func (c *CurrentCmd) Run(g *Globals) error {
	client, cfg, err := g.client()
	if err != nil {
		return err
	}
	city := c.CityName
	if city == "" {
		city = cfg.DefaultCity
	}

	ctx := context.Background()
	raw, err := client.CurrentByCity(ctx, city, c.Country, "")
	if err != nil {
		return err
	}
	snap, err := owm.NormalizeCurrent(raw)
	if err != nil {
		return err
	}
	printSnapshot(snap)
	return nil
}

func printSnapshot(s *owm.WeatherSnapshot) {
	fmt.Printf("Weather in %s, %s\n", s.City, s.Country)
	fmt.Printf("  %s (%s)\n", s.Description, s.Condition)
	fmt.Printf("  temperature: %.1f (feels like %.1f)\n", s.Temperature, s.FeelsLike)
	fmt.Printf("  humidity: %d%%  pressure: %d hPa\n", s.Humidity, s.Pressure)
	if s.WindSpeed.Valid {
		fmt.Printf("  wind: %.1f", s.WindSpeed.Float64)
		if s.WindDeg.Valid {
			fmt.Printf(" @ %d deg", s.WindDeg.Int64)
		}
		fmt.Println()
	}
	if s.Visibility.Valid {
		fmt.Printf("  visibility: %d m\n", s.Visibility.Int64)
	}
	fmt.Printf("  observed: %s\n", time.Unix(s.ObservedAt, 0).Format(time.RFC1123))
}

type ForecastCmd struct {
	Lat float64 `arg:"" help:"Latitude."`
	Lon float64 `arg:"" help:"Longitude."`
}

func (c *ForecastCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	raw, err := client.HourlyForecast(context.Background(), c.Lat, c.Lon, "")
	if err != nil {
		return err
	}
	bundle := owm.NormalizeForecast(raw)
	fmt.Printf("Forecast for %.3f,%.3f (%s)\n", bundle.Latitude, bundle.Longitude, bundle.Timezone)
	for _, h := range bundle.Hourly {
		at := time.Unix(h.At, 0).Format("Mon 15:04")
		fmt.Printf("  %s  %s", at, h.Condition.Description)
		if h.Temperature.Valid {
			fmt.Printf("  %.1f", h.Temperature.Float64)
		}
		fmt.Printf("  pop %.0f%%\n", h.Pop*100)
	}
	return nil
}

type DailyCmd struct {
	Lat  float64 `arg:"" help:"Latitude."`
	Lon  float64 `arg:"" help:"Longitude."`
	Days int     `help:"Forecast horizon in days (max 16)." default:"16"`
}

func (c *DailyCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	resp, err := client.DailyForecast(context.Background(), c.Lat, c.Lon, c.Days, "")
	if err != nil {
		return err
	}
	fmt.Printf("Daily forecast for %s (%d days)\n", resp.City.Name, len(resp.List))
	for _, d := range resp.List {
		at := time.Unix(d.Dt, 0).Format("Mon 02 Jan")
		fmt.Printf("  %s", at)
		if d.Temp.Min != nil && d.Temp.Max != nil {
			fmt.Printf("  %.0f to %.0f", *d.Temp.Min, *d.Temp.Max)
		}
		if len(d.Weather) > 0 {
			fmt.Printf("  %s", d.Weather[0].Description)
		}
		fmt.Println()
	}
	return nil
}

type HistoryCmd struct {
	Lat   float64 `arg:"" help:"Latitude."`
	Lon   float64 `arg:"" help:"Longitude."`
	Date  string  `arg:"" help:"Date (YYYY-MM-DD)."`
	Until string  `help:"Fetch a range ending at this date (YYYY-MM-DD)."`
}

func (c *HistoryCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	start, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}

	ctx := context.Background()
	if c.Until == "" {
		res, err := client.Historical(ctx, c.Lat, c.Lon, start, "")
		if err != nil {
			return err
		}
		printHistory(res)
		return nil
	}

	end, err := time.Parse("2006-01-02", c.Until)
	if err != nil {
		return fmt.Errorf("parse until: %w", err)
	}
	results, err := client.HistoricalRange(ctx, c.Lat, c.Lon, start, end, "")
	if err != nil {
		return err
	}
	for _, res := range results {
		printHistory(res)
	}
	return nil
}

func printHistory(res *owm.OneCallResponse) {
	if res.Current != nil && res.Current.Temp != nil {
		at := time.Unix(res.Current.Dt, 0).Format("2006-01-02")
		fmt.Printf("  %s  %.1f\n", at, *res.Current.Temp)
		return
	}
	if len(res.Hourly) > 0 && res.Hourly[0].Temp != nil {
		at := time.Unix(res.Hourly[0].Dt, 0).Format("2006-01-02")
		fmt.Printf("  %s  %.1f (first hourly)\n", at, *res.Hourly[0].Temp)
	}
}

type AirCmd struct {
	Lat      float64 `arg:"" help:"Latitude."`
	Lon      float64 `arg:"" help:"Longitude."`
	Forecast bool    `help:"Show the 5-day air quality forecast instead of current."`
}

func (c *AirCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	ctx := context.Background()
	var resp *owm.AirPollutionResponse
	if c.Forecast {
		resp, err = client.AirPollutionForecast(ctx, c.Lat, c.Lon)
	} else {
		resp, err = client.AirPollutionCurrent(ctx, c.Lat, c.Lon)
	}
	if err != nil {
		return err
	}
	for _, entry := range resp.List {
		at := time.Unix(entry.Dt, 0).Format("Mon 02 Jan 15:04")
		fmt.Printf("  %s  AQI %d  pm2.5 %.1f\n", at, entry.Main.AQI, entry.Components["pm2_5"])
	}
	return nil
}

type GeocodeCmd struct {
	CityName string `arg:"" help:"City name to resolve."`
	Limit    int    `help:"Maximum candidates." default:"5"`
}

func (c *GeocodeCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	results, err := client.GeocodeCity(context.Background(), c.CityName, c.Limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	printGeocodeResults(results)
	return nil
}

type ReverseCmd struct {
	Lat   float64 `arg:"" help:"Latitude."`
	Lon   float64 `arg:"" help:"Longitude."`
	Limit int     `help:"Maximum candidates." default:"5"`
}

func (c *ReverseCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	results, err := client.ReverseGeocode(context.Background(), c.Lat, c.Lon, c.Limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	printGeocodeResults(results)
	return nil
}

func printGeocodeResults(results []owm.GeocodeResult) {
	for _, r := range results {
		place := r.Name
		if r.State != "" {
			place += ", " + r.State
		}
		fmt.Printf("  %s, %s  (%.4f, %.4f)\n", place, r.Country, r.Lat, r.Lon)
	}
}

type TileCmd struct {
	Layer string `arg:"" help:"Map layer, e.g. temp_new."`
	Zoom  int    `arg:"" help:"Zoom level (0-18)."`
	X     int    `arg:"" help:"Tile X coordinate."`
	Y     int    `arg:"" help:"Tile Y coordinate."`
}

func (c *TileCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	fmt.Println(client.MapTileURL(c.Layer, c.Zoom, c.X, c.Y))
	return nil
}

type LayersCmd struct{}

func (c *LayersCmd) Run(g *Globals) error {
	client, _, err := g.client()
	if err != nil {
		return err
	}
	for _, layer := range client.MapLayers() {
		fmt.Println(layer)
	}
	return nil
}

type WatchCmd struct {
	CityName    string        `arg:"" optional:"" help:"City to watch (defaults to DEFAULT_CITY)."`
	Interval    time.Duration `help:"Poll interval." default:"10m"`
	MetricsAddr string        `help:"Address to serve Prometheus metrics on, e.g. :9090."`
}

func (c *WatchCmd) Run(g *Globals) error {
	client, cfg, err := g.client()
	if err != nil {
		return err
	}
	city := c.CityName
	if city == "" {
		city = cfg.DefaultCity
	}
	log.Printf("configuration:\n%s", cfg.Summary())

	if c.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(c.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
		log.Printf("serving metrics on %s", c.MetricsAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	poll := func() {
		operation := func() error {
			raw, err := client.CurrentByCity(ctx, city, "", "")
			if err != nil {
				// Auth and location errors will not fix themselves;
				// transient network and rate-limit failures are worth
				// retrying.
				if owm.IsKind(err, owm.KindNetwork) || owm.IsKind(err, owm.KindRateLimited) {
					return err
				}
				return backoff.Permanent(err)
			}
			snap, err := owm.NormalizeCurrent(raw)
			if err != nil {
				return backoff.Permanent(err)
			}
			printSnapshot(snap)
			return nil
		}

		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 2 * time.Minute
		if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
			log.Printf("watch: %v", err)
		}
	}

	poll()
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("watch: shutting down")
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

type CLI struct {
	Globals

	Current  CurrentCmd  `cmd:"" help:"Show current conditions for a city."`
	Forecast ForecastCmd `cmd:"" help:"Show the hourly forecast for coordinates."`
	Daily    DailyCmd    `cmd:"" help:"Show the daily forecast for coordinates."`
	History  HistoryCmd  `cmd:"" help:"Show historical weather for a date or range."`
	Air      AirCmd      `cmd:"" help:"Show air quality for coordinates."`
	Geocode  GeocodeCmd  `cmd:"" help:"Resolve a city name to coordinates."`
	Reverse  ReverseCmd  `cmd:"" help:"Resolve coordinates to place names."`
	Tile     TileCmd     `cmd:"" help:"Print a weather map tile URL."`
	Layers   LayersCmd   `cmd:"" help:"List available map tile layers."`
	Watch    WatchCmd    `cmd:"" help:"Poll current conditions on an interval."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("weatherdesk"),
		kong.Description("OpenWeatherMap client for desktop weather viewing."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
