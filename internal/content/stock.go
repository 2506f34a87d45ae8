package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const (
	DefaultStockBaseURL = "https://www.alphavantage.co/query"
	DefaultStockSymbol  = "IBM"
	StockPoints         = 48
)

// PlotPoint is one daily close; X is the day offset relative to today.
type PlotPoint struct {
	X int
	Y float64
}

type Stock struct {
	Symbol    string
	Points    []PlotPoint
	FetchedAt time.Time
}

// Last returns the most recent close, or 0 without data.
func (s *Stock) Last() float64 {
	if s == nil || len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Y
}

// Change returns the difference between the two most recent closes.
func (s *Stock) Change() float64 {
	if s == nil || len(s.Points) < 2 {
		return 0
	}
	n := len(s.Points)
	return s.Points[n-1].Y - s.Points[n-2].Y
}

type avDaily struct {
	Series  map[string]map[string]string `json:"Time Series (Daily)"`
	Note    string                       `json:"Note"`
	Info    string                       `json:"Information"`
	ErrText string                       `json:"Error Message"`
}

type StockController struct {
	client  *http.Client
	baseURL string
	apiKey  string
	symbol  string
	now     func() time.Time
	last    *Stock
}

func NewStockController(client *http.Client, baseURL, apiKey, symbol string) *StockController {
	if baseURL == "" {
		baseURL = DefaultStockBaseURL
	}
	if symbol == "" {
		symbol = DefaultStockSymbol
	}
	return &StockController{client: client, baseURL: baseURL, apiKey: apiKey, symbol: symbol, now: time.Now}
}

func (c *StockController) Name() string { return "stock" }

func (c *StockController) Symbol() string { return c.symbol }

func (c *StockController) Refresh(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("alphavantage api key not configured")
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", c.symbol)
	q.Set("apikey", c.apiKey)

	var resp avDaily
	if err := fetchJSON(ctx, c.client, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		return fmt.Errorf("stock %s: %w", c.symbol, err)
	}

	points, err := stockPoints(resp, c.now(), StockPoints)
	if err != nil {
		return fmt.Errorf("stock %s: %w", c.symbol, err)
	}

	c.last = &Stock{Symbol: c.symbol, Points: points, FetchedAt: time.Now()}
	return nil
}

// Stock returns the last good snapshot, or nil before the first success.
func (c *StockController) Stock() *Stock { return c.last }

// stockPoints keeps the max most recent closes, sorted oldest first.
func stockPoints(resp avDaily, now time.Time, max int) ([]PlotPoint, error) {
	switch {
	case resp.ErrText != "":
		return nil, fmt.Errorf("api error: %s", resp.ErrText)
	case len(resp.Series) == 0 && resp.Note != "":
		return nil, fmt.Errorf("api limit: %s", resp.Note)
	case len(resp.Series) == 0 && resp.Info != "":
		return nil, fmt.Errorf("api info: %s", resp.Info)
	case len(resp.Series) == 0:
		return nil, fmt.Errorf("empty time series")
	}

	today := dayOf(now.UTC())
	type day struct {
		date  time.Time
		close float64
	}
	days := make([]day, 0, len(resp.Series))
	for date, values := range resp.Series {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", date, err)
		}
		closing, err := strconv.ParseFloat(values["4. close"], 64)
		if err != nil {
			return nil, fmt.Errorf("bad close on %s: %w", date, err)
		}
		days = append(days, day{date: d, close: closing})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].date.After(days[j].date) })
	if len(days) > max {
		days = days[:max]
	}

	points := make([]PlotPoint, len(days))
	for i, d := range days {
		offset := int(d.date.Sub(today).Hours() / 24)
		points[len(days)-1-i] = PlotPoint{X: offset, Y: d.close}
	}
	return points, nil
}
