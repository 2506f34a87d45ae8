package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	forecastHours         = 4
	forecastDays          = 4
)

// Report is the current weather at the configured location.
type Report struct {
	Name        string
	Description string
	Icon        string
	Temp        float64
	TempMin     float64
	TempMax     float64
	FeelsLike   float64
	Pressure    int
	Humidity    int
	Visibility  int
	Sunrise     time.Time
	Sunset      time.Time
}

// Forecast is one column of the hourly or daily forecast row.
type Forecast struct {
	At   time.Time
	Icon string
	Temp float64
	Min  float64
	Max  float64
}

type Weather struct {
	Location  string
	Current   Report
	Hourly    []Forecast
	Daily     []Forecast
	FetchedAt time.Time
}

type owDescription struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owMain struct {
	Temp      float64 `json:"temp"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	FeelsLike float64 `json:"feels_like"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type owCurrent struct {
	Weather    []owDescription `json:"weather"`
	Main       owMain          `json:"main"`
	Visibility int             `json:"visibility"`
	Name       string          `json:"name"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type owForecast struct {
	List []struct {
		Dt      int64           `json:"dt"`
		Main    owMain          `json:"main"`
		Weather []owDescription `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type WeatherController struct {
	client  *http.Client
	baseURL string
	apiKey  string
	lang    string
	last    *Weather
}

func NewWeatherController(client *http.Client, baseURL, apiKey, lang string) *WeatherController {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if lang == "" {
		lang = "en"
	}
	return &WeatherController{client: client, baseURL: baseURL, apiKey: apiKey, lang: lang}
}

func (c *WeatherController) Name() string { return "weather" }

// Refresh fetches current conditions and the forecast for location.
// Both requests must succeed for the snapshot to be replaced.
func (c *WeatherController) Refresh(ctx context.Context, location string) error {
	if c.apiKey == "" {
		return fmt.Errorf("openweather api key not configured")
	}
	if location == "" {
		return fmt.Errorf("no location configured")
	}

	var cur owCurrent
	if err := fetchJSON(ctx, c.client, c.endpoint("weather", location), &cur); err != nil {
		return fmt.Errorf("current weather: %w", err)
	}
	if len(cur.Weather) == 0 {
		return fmt.Errorf("current weather: response without conditions")
	}

	var fc owForecast
	if err := fetchJSON(ctx, c.client, c.endpoint("forecast", location), &fc); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	w := &Weather{
		Location: location,
		Current: Report{
			Name:        cur.Name,
			Description: cur.Weather[0].Description,
			Icon:        cur.Weather[0].Icon,
			Temp:        cur.Main.Temp,
			TempMin:     cur.Main.TempMin,
			TempMax:     cur.Main.TempMax,
			FeelsLike:   cur.Main.FeelsLike,
			Pressure:    cur.Main.Pressure,
			Humidity:    cur.Main.Humidity,
			Visibility:  cur.Visibility,
			Sunrise:     time.Unix(cur.Sys.Sunrise, 0),
			Sunset:      time.Unix(cur.Sys.Sunset, 0),
		},
		FetchedAt: time.Now(),
	}
	w.Hourly, w.Daily = summarizeForecast(fc)
	c.last = w
	return nil
}

// Weather returns the last good snapshot, or nil before the first success.
func (c *WeatherController) Weather() *Weather { return c.last }

func (c *WeatherController) endpoint(kind, location string) string {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("lang", c.lang)
	q.Set("units", "metric")
	return fmt.Sprintf("%s/%s?%s", c.baseURL, kind, q.Encode())
}

// summarizeForecast keeps the next few 3-hour slots and folds the rest into
// per-day min/max, skipping the current local day.
func summarizeForecast(fc owForecast) (hourly, daily []Forecast) {
	zone := time.FixedZone("city", fc.City.Timezone)

	for i, e := range fc.List {
		if i >= forecastHours {
			break
		}
		hourly = append(hourly, Forecast{
			At:   time.Unix(e.Dt, 0).In(zone),
			Icon: iconOf(e.Weather),
			Temp: e.Main.Temp,
			Min:  e.Main.TempMin,
			Max:  e.Main.TempMax,
		})
	}

	if len(fc.List) == 0 {
		return hourly, nil
	}

	firstDay := dayOf(time.Unix(fc.List[0].Dt, 0).In(zone))
	byDay := map[time.Time]*Forecast{}
	middayDistance := map[time.Time]int{}

	for _, e := range fc.List {
		at := time.Unix(e.Dt, 0).In(zone)
		day := dayOf(at)
		if day.Equal(firstDay) {
			continue
		}
		f, ok := byDay[day]
		if !ok {
			f = &Forecast{At: day, Min: e.Main.TempMin, Max: e.Main.TempMax}
			byDay[day] = f
			middayDistance[day] = 24
		}
		if e.Main.TempMin < f.Min {
			f.Min = e.Main.TempMin
		}
		if e.Main.TempMax > f.Max {
			f.Max = e.Main.TempMax
		}
		// the icon of the slot closest to noon represents the day
		if d := abs(at.Hour() - 12); d < middayDistance[day] {
			middayDistance[day] = d
			f.Icon = iconOf(e.Weather)
			f.Temp = e.Main.Temp
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for i, d := range days {
		if i >= forecastDays {
			break
		}
		daily = append(daily, *byDay[d])
	}
	return hourly, daily
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func iconOf(ds []owDescription) string {
	if len(ds) == 0 {
		return ""
	}
	return ds[0].Icon
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
