package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentSample = `{
  "weather": [{"description": "light rain", "icon": "10d"}],
  "main": {"temp": 11.5, "temp_min": 9.1, "temp_max": 13.2, "feels_like": 10.2, "pressure": 1012, "humidity": 81},
  "visibility": 10000,
  "name": "Kaiserslautern",
  "sys": {"sunrise": 1700000000, "sunset": 1700030000}
}`

// forecastSample builds 3-hourly slots starting at start (UTC, timezone 0).
func forecastSample(start time.Time, slots int) string {
	var items []string
	for i := 0; i < slots; i++ {
		at := start.Add(time.Duration(i*3) * time.Hour)
		temp := float64(i)
		items = append(items, fmt.Sprintf(
			`{"dt": %d, "main": {"temp": %.1f, "temp_min": %.1f, "temp_max": %.1f}, "weather": [{"description": "x", "icon": "i%02d"}]}`,
			at.Unix(), temp, temp-1, temp+1, at.Hour()))
	}
	return fmt.Sprintf(`{"list": [%s], "city": {"name": "Kaiserslautern", "timezone": 0}}`, strings.Join(items, ","))
}

func TestSummarizeForecast(t *testing.T) {
	start := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	var fc owForecast
	require.NoError(t, jsonUnmarshal(forecastSample(start, 40), &fc))

	hourly, daily := summarizeForecast(fc)
	require.Len(t, hourly, forecastHours)
	assert.Equal(t, 21, hourly[0].At.Hour())
	assert.Equal(t, 0, hourly[1].At.Hour())

	require.Len(t, daily, forecastDays)
	// the first day (2024-03-01) only has the 21:00 slot and is skipped
	assert.Equal(t, 2, daily[0].At.Day())
	assert.Equal(t, "i12", daily[0].Icon)
	// day 2 covers slots 1..8 (temps 1..8): min 0, max 9
	assert.InDelta(t, 0.0, daily[0].Min, 0.01)
	assert.InDelta(t, 9.0, daily[0].Max, 0.01)
	for i := 1; i < len(daily); i++ {
		assert.True(t, daily[i].At.After(daily[i-1].At))
	}
}

func TestWeatherControllerRefresh(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(currentSample))
		case "/forecast":
			_, _ = w.Write([]byte(forecastSample(time.Now().UTC(), 16)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewWeatherController(srv.Client(), srv.URL, "key", "de")
	require.NoError(t, c.Refresh(context.Background(), "Kaiserslautern"))

	w := c.Weather()
	require.NotNil(t, w)
	assert.Equal(t, "Kaiserslautern", w.Location)
	assert.Equal(t, "light rain", w.Current.Description)
	assert.Equal(t, "10d", w.Current.Icon)
	assert.Equal(t, 81, w.Current.Humidity)
	assert.Len(t, w.Hourly, forecastHours)
	assert.Contains(t, gotQuery, "units=metric")
	assert.Contains(t, gotQuery, "lang=de")
	assert.Contains(t, gotQuery, "q=Kaiserslautern")
}

func TestWeatherControllerFailuresKeepSnapshot(t *testing.T) {
	forecastDown := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/forecast" && forecastDown {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/weather" {
			_, _ = w.Write([]byte(currentSample))
			return
		}
		_, _ = w.Write([]byte(forecastSample(time.Now().UTC(), 8)))
	}))
	defer srv.Close()

	c := NewWeatherController(srv.Client(), srv.URL, "key", "")
	require.NoError(t, c.Refresh(context.Background(), "KL"))
	prev := c.Weather()

	forecastDown = true
	require.Error(t, c.Refresh(context.Background(), "KL"))
	assert.Same(t, prev, c.Weather())
}

func TestWeatherControllerNeedsKeyAndLocation(t *testing.T) {
	c := NewWeatherController(http.DefaultClient, "", "", "")
	assert.Error(t, c.Refresh(context.Background(), "KL"))

	c = NewWeatherController(http.DefaultClient, "", "key", "")
	assert.Error(t, c.Refresh(context.Background(), ""))
}
