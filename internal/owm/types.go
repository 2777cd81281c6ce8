package owm

import "database/sql"

// Coord is a provider coordinate pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Condition is one entry of the provider's weather[] array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeatherResponse is the raw /weather payload. Provider-optional
// values are pointers so absence survives decoding.
type CurrentWeatherResponse struct {
	Name    string      `json:"name"`
	Coord   *Coord      `json:"coord"`
	Weather []Condition `json:"weather"`
	Main    *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *int     `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   *int     `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Visibility *int  `json:"visibility"`
	Dt         int64 `json:"dt"`
	Sys        *struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// OneCallResponse is the raw one-call payload, shared by the hourly
// forecast and the timemachine history endpoints.
type OneCallResponse struct {
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	Timezone       string         `json:"timezone"`
	TimezoneOffset int            `json:"timezone_offset"`
	Current        *OneCallPoint  `json:"current"`
	Hourly         []OneCallPoint `json:"hourly"`
	Daily          []OneCallDay   `json:"daily"`
}

// OneCallPoint is a single current or hourly record inside a one-call
// response.
type OneCallPoint struct {
	Dt         int64       `json:"dt"`
	Sunrise    *int64      `json:"sunrise"`
	Sunset     *int64      `json:"sunset"`
	Temp       *float64    `json:"temp"`
	FeelsLike  *float64    `json:"feels_like"`
	Pressure   *int        `json:"pressure"`
	Humidity   *int        `json:"humidity"`
	UVI        *float64    `json:"uvi"`
	Visibility *int        `json:"visibility"`
	WindSpeed  *float64    `json:"wind_speed"`
	WindDeg    *int        `json:"wind_deg"`
	Pop        *float64    `json:"pop"`
	Weather    []Condition `json:"weather"`
}

// OneCallDay is a single daily record inside a one-call response.
type OneCallDay struct {
	Dt        int64       `json:"dt"`
	Sunrise   *int64      `json:"sunrise"`
	Sunset    *int64      `json:"sunset"`
	Temp      DayTemps    `json:"temp"`
	FeelsLike DayTemps    `json:"feels_like"`
	Pressure  *int        `json:"pressure"`
	Humidity  *int        `json:"humidity"`
	WindSpeed *float64    `json:"wind_speed"`
	WindDeg   *int        `json:"wind_deg"`
	Pop       *float64    `json:"pop"`
	Rain      *float64    `json:"rain"`
	Weather   []Condition `json:"weather"`
}

// DayTemps is the per-daypart temperature block of a daily record.
type DayTemps struct {
	Morn  *float64 `json:"morn"`
	Day   *float64 `json:"day"`
	Eve   *float64 `json:"eve"`
	Night *float64 `json:"night"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// DailyForecastResponse is the raw /forecast/daily payload (up to 16
// days).
type DailyForecastResponse struct {
	City struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Coord    Coord  `json:"coord"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
	Cnt  int          `json:"cnt"`
	List []OneCallDay `json:"list"`
}

// AirPollutionResponse is the raw payload for the current, forecast
// and history air pollution endpoints.
type AirPollutionResponse struct {
	Coord Coord `json:"coord"`
	List  []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

// GeocodeResult is one candidate location from the geocoding
// endpoints. An empty result set means no match; it is not an error.
type GeocodeResult struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`
}

// WeatherSnapshot is a normalized point-in-time reading for one
// location. Optional provider fields use sql.Null*; Valid=false is
// the explicit "unavailable" marker. Snapshots are never mutated
// after construction.
type WeatherSnapshot struct {
	City        string
	Country     string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	Description string
	Condition   string
	WindSpeed   sql.NullFloat64
	WindDeg     sql.NullInt64
	Visibility  sql.NullInt64
	Latitude    float64
	Longitude   float64
	ObservedAt  int64
	Sunrise     sql.NullInt64
	Sunset      sql.NullInt64
}

// ForecastBundle is a normalized one-call response: location metadata
// plus current, hourly and daily sequences in provider order.
type ForecastBundle struct {
	Latitude       float64
	Longitude      float64
	Timezone       string
	TimezoneOffset int
	Current        *ForecastPoint
	Hourly         []ForecastPoint
	Daily          []ForecastDay
}

// ForecastPoint is a normalized current or hourly forecast record.
type ForecastPoint struct {
	At          int64
	Temperature sql.NullFloat64
	FeelsLike   sql.NullFloat64
	Humidity    sql.NullInt64
	Pressure    sql.NullInt64
	WindSpeed   sql.NullFloat64
	WindDeg     sql.NullInt64
	Visibility  sql.NullInt64
	UVIndex     sql.NullFloat64
	Condition   Condition
	Pop         float64
}

// ForecastDay is a normalized daily forecast record.
type ForecastDay struct {
	At        int64
	Temps     DayTemps
	FeelsLike DayTemps
	Humidity  sql.NullInt64
	Pressure  sql.NullInt64
	WindSpeed sql.NullFloat64
	WindDeg   sql.NullInt64
	Condition Condition
	Pop       float64
	Rain      sql.NullFloat64
}
