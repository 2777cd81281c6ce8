package owm

import (
	"database/sql"
	"strings"
	"time"
	"unicode"
)

// NormalizeCurrent reshapes a raw current-weather response into a
// WeatherSnapshot. City name, coordinates, the main block and
// weather[0] are required; wind, visibility and sun times are
// optional and come back with Valid=false when absent.
func NormalizeCurrent(raw *CurrentWeatherResponse) (*WeatherSnapshot, error) {
	if raw.Name == "" {
		return nil, newMalformed("name")
	}
	if raw.Coord == nil {
		return nil, newMalformed("coord")
	}
	if raw.Main == nil {
		return nil, newMalformed("main")
	}
	if raw.Main.Temp == nil {
		return nil, newMalformed("main.temp")
	}
	if raw.Main.FeelsLike == nil {
		return nil, newMalformed("main.feels_like")
	}
	if raw.Main.Humidity == nil {
		return nil, newMalformed("main.humidity")
	}
	if raw.Main.Pressure == nil {
		return nil, newMalformed("main.pressure")
	}
	if len(raw.Weather) == 0 {
		return nil, newMalformed("weather[0]")
	}

	snap := &WeatherSnapshot{
		City:        raw.Name,
		Country:     "Unknown",
		Temperature: *raw.Main.Temp,
		FeelsLike:   *raw.Main.FeelsLike,
		Humidity:    *raw.Main.Humidity,
		Pressure:    *raw.Main.Pressure,
		Description: titleCase(raw.Weather[0].Description),
		Condition:   raw.Weather[0].Main,
		Latitude:    raw.Coord.Lat,
		Longitude:   raw.Coord.Lon,
		ObservedAt:  raw.Dt,
	}
	if snap.ObservedAt == 0 {
		snap.ObservedAt = time.Now().Unix()
	}

	if raw.Sys != nil {
		if raw.Sys.Country != "" {
			snap.Country = raw.Sys.Country
		}
		if raw.Sys.Sunrise != nil {
			snap.Sunrise = sql.NullInt64{Int64: *raw.Sys.Sunrise, Valid: true}
		}
		if raw.Sys.Sunset != nil {
			snap.Sunset = sql.NullInt64{Int64: *raw.Sys.Sunset, Valid: true}
		}
	}
	if raw.Wind != nil {
		if raw.Wind.Speed != nil {
			snap.WindSpeed = sql.NullFloat64{Float64: *raw.Wind.Speed, Valid: true}
		}
		if raw.Wind.Deg != nil {
			snap.WindDeg = sql.NullInt64{Int64: int64(*raw.Wind.Deg), Valid: true}
		}
	}
	if raw.Visibility != nil {
		snap.Visibility = sql.NullInt64{Int64: int64(*raw.Visibility), Valid: true}
	}

	return snap, nil
}

// NormalizeForecast reshapes a raw one-call response into a
// ForecastBundle. Every field is treated as optional; hourly and
// daily sequences keep the provider's ordering.
func NormalizeForecast(raw *OneCallResponse) *ForecastBundle {
	bundle := &ForecastBundle{
		Latitude:       raw.Lat,
		Longitude:      raw.Lon,
		Timezone:       raw.Timezone,
		TimezoneOffset: raw.TimezoneOffset,
	}

	if raw.Current != nil {
		p := normalizePoint(raw.Current)
		bundle.Current = &p
	}
	for i := range raw.Hourly {
		bundle.Hourly = append(bundle.Hourly, normalizePoint(&raw.Hourly[i]))
	}
	for i := range raw.Daily {
		bundle.Daily = append(bundle.Daily, normalizeDay(&raw.Daily[i]))
	}

	return bundle
}

func normalizePoint(raw *OneCallPoint) ForecastPoint {
	p := ForecastPoint{At: raw.Dt}

	if raw.Temp != nil {
		p.Temperature = sql.NullFloat64{Float64: *raw.Temp, Valid: true}
	}
	if raw.FeelsLike != nil {
		p.FeelsLike = sql.NullFloat64{Float64: *raw.FeelsLike, Valid: true}
	}
	if raw.Humidity != nil {
		p.Humidity = sql.NullInt64{Int64: int64(*raw.Humidity), Valid: true}
	}
	if raw.Pressure != nil {
		p.Pressure = sql.NullInt64{Int64: int64(*raw.Pressure), Valid: true}
	}
	if raw.WindSpeed != nil {
		p.WindSpeed = sql.NullFloat64{Float64: *raw.WindSpeed, Valid: true}
	}
	if raw.WindDeg != nil {
		p.WindDeg = sql.NullInt64{Int64: int64(*raw.WindDeg), Valid: true}
	}
	if raw.Visibility != nil {
		p.Visibility = sql.NullInt64{Int64: int64(*raw.Visibility), Valid: true}
	}
	if raw.UVI != nil {
		p.UVIndex = sql.NullFloat64{Float64: *raw.UVI, Valid: true}
	}
	if raw.Pop != nil {
		p.Pop = *raw.Pop
	}
	if len(raw.Weather) > 0 {
		p.Condition = raw.Weather[0]
		p.Condition.Description = titleCase(p.Condition.Description)
	}

	return p
}

func normalizeDay(raw *OneCallDay) ForecastDay {
	d := ForecastDay{
		At:        raw.Dt,
		Temps:     raw.Temp,
		FeelsLike: raw.FeelsLike,
	}

	if raw.Humidity != nil {
		d.Humidity = sql.NullInt64{Int64: int64(*raw.Humidity), Valid: true}
	}
	if raw.Pressure != nil {
		d.Pressure = sql.NullInt64{Int64: int64(*raw.Pressure), Valid: true}
	}
	if raw.WindSpeed != nil {
		d.WindSpeed = sql.NullFloat64{Float64: *raw.WindSpeed, Valid: true}
	}
	if raw.WindDeg != nil {
		d.WindDeg = sql.NullInt64{Int64: int64(*raw.WindDeg), Valid: true}
	}
	if raw.Rain != nil {
		d.Rain = sql.NullFloat64{Float64: *raw.Rain, Valid: true}
	}
	if raw.Pop != nil {
		d.Pop = *raw.Pop
	}
	if len(raw.Weather) > 0 {
		d.Condition = raw.Weather[0]
		d.Condition.Description = titleCase(d.Condition.Description)
	}

	return d
}

// titleCase upper-cases the first letter of each space-separated word,
// matching how descriptions like "scattered clouds" are displayed.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
