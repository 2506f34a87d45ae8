package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feed_display"

// PowerStates lists every value SetPowerState may receive; the gauge is 1 for
// the current state and 0 for the others.
var PowerStates = []string{"setup_mode", "connecting", "connected", "disconnecting", "deep_sleep"}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	refreshes      *prom.CounterVec
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	pageSwitches   *prom.CounterVec
	buttonPresses  prom.Counter
	commands       *prom.CounterVec
	powerState     *prom.GaugeVec
	persistErrors  *prom.CounterVec
	battery        prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		refreshes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_results_total",
			Help:      "Content refresh attempts by source and result",
		}, []string{"source", "result"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time from panel wake to panel sleep",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"page"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Rendered frames by page and result",
		}, []string{"page", "result"}),
		pageSwitches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_switches_total",
			Help:      "Page changes by target page",
		}, []string{"page"}),
		buttonPresses: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "button_presses_total",
			Help:      "Debounced button presses",
		}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands applied by the dispatch loop",
		}, []string{"kind"}),
		powerState: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "power_state",
			Help:      "Current power cycle state",
		}, []string{"state"}),
		persistErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed writes to the settings store by key",
		}, []string{"key"}),
		battery: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_millivolts",
			Help:      "Last sampled battery voltage",
		}),
	}
	reg.MustRegister(pr.refreshes, pr.renderDuration, pr.renderResults, pr.pageSwitches,
		pr.buttonPresses, pr.commands, pr.powerState, pr.persistErrors, pr.battery)
	return pr
}

func (p *PrometheusRecorder) IncRefresh(source, result string) {
	if p == nil {
		return
	}
	p.refreshes.WithLabelValues(source, result).Inc()
}

func (p *PrometheusRecorder) ObserveRender(page string, d time.Duration, err error) {
	if p == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	p.renderDuration.WithLabelValues(page).Observe(d.Seconds())
	p.renderResults.WithLabelValues(page, result).Inc()
}

func (p *PrometheusRecorder) IncPageSwitch(to string) {
	if p == nil {
		return
	}
	p.pageSwitches.WithLabelValues(to).Inc()
}

func (p *PrometheusRecorder) AddButtonPresses(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.buttonPresses.Add(float64(n))
}

func (p *PrometheusRecorder) IncCommand(kind string) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetPowerState(state string) {
	if p == nil {
		return
	}
	for _, s := range PowerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.powerState.WithLabelValues(s).Set(v)
	}
}

func (p *PrometheusRecorder) IncPersistFailure(key string) {
	if p == nil {
		return
	}
	p.persistErrors.WithLabelValues(key).Inc()
}

func (p *PrometheusRecorder) SetBatteryMillivolts(mv uint16) {
	if p == nil {
		return
	}
	p.battery.Set(float64(mv))
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
