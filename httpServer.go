package main

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"image"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/photonicat/feed_display/internal/command"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/power"
	"github.com/photonicat/feed_display/internal/settings"
	"github.com/photonicat/feed_display/internal/state"
)

//go:embed assets/html/*.html
var htmlFS embed.FS

var (
	indexTmpl = template.Must(template.ParseFS(htmlFS, "assets/html/layout.html", "assets/html/index.html"))
	formTmpl  = template.Must(template.ParseFS(htmlFS, "assets/html/layout.html", "assets/html/form.html"))
)

const (
	maxBodyBytes = 4 * 1024
	sendTimeout  = 2 * time.Second
)

// deviceAPI is the part of the device the config server talks to.
type deviceAPI interface {
	Sender() command.Sender
	View() state.View
	Frame() *image.RGBA
	PowerState() power.State
}

type formField struct {
	Name, Label, Type string
}

type formPage struct {
	Title  string
	Path   string
	Fields []formField
}

var formPages = map[string]formPage{
	settings.KeyPersonal: {Title: "Personal", Path: "/personal", Fields: []formField{
		{Name: "name", Label: "Name", Type: "text"},
		{Name: "location", Label: "Ort", Type: "text"},
	}},
	settings.KeyWifi: {Title: "WLAN", Path: "/wifi", Fields: []formField{
		{Name: "ssid", Label: "SSID", Type: "text"},
		{Name: "pass", Label: "Passwort", Type: "password"},
	}},
	settings.KeyRss: {Title: "RSS", Path: "/rss", Fields: []formField{
		{Name: "url", Label: "Feed URL", Type: "url"},
	}},
	settings.KeyStock: {Title: "Aktie", Path: "/stock", Fields: []formField{
		{Name: "symbol", Label: "Symbol", Type: "text"},
	}},
}

// configServer is the fiber app started by the power manager in setup mode
// and during the config-server window of a normal session.
type configServer struct {
	app    *fiber.App
	listen string

	mu      sync.Mutex
	running bool
}

func newConfigServer(listen string, dev deviceAPI, reg *prom.Registry) *configServer {
	return &configServer{app: newApp(dev, reg), listen: listen}
}

func newApp(dev deviceAPI, reg *prom.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             maxBodyBytes,
		DisableStartupMessage: true,
	})

	// Routes
	app.Get("/", indexHandler(dev))
	app.Get("/frame", frameHandler(dev))
	app.Get("/status", statusHandler(dev))
	app.Get("/favicon.ico", faviconHandler)
	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.HTTPHandler(reg)))
	}

	app.Get("/personal", formHandler(settings.KeyPersonal))
	app.Get("/wifi", formHandler(settings.KeyWifi))
	app.Get("/rss", formHandler(settings.KeyRss))
	app.Get("/stock", formHandler(settings.KeyStock))

	app.Post("/personal", saveHandler[settings.Personal](dev))
	app.Post("/wifi", saveHandler[settings.Wifi](dev))
	app.Post("/rss", saveHandler[settings.Rss](dev))
	app.Post("/stock", saveHandler[settings.Stock](dev))
	return app
}

// Start binds the listener before returning so a port conflict is reported
// to the caller.
func (s *configServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return err
	}
	s.running = true
	slog.Info("Starting config server", slog.String("addr", ln.Addr().String()))
	go func() {
		if err := s.app.Listener(ln); err != nil {
			slog.Error("Config server stopped", logfields.Error(err))
		}
	}()
	return nil
}

func (s *configServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	slog.Info("Stopping config server")
	return s.app.ShutdownWithContext(ctx)
}

func renderHTML(c *fiber.Ctx, tmpl *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func indexHandler(dev deviceAPI) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := dev.View()
		return renderHTML(c, indexTmpl, "index.html", fiber.Map{
			"Page":      v.Page.String(),
			"Power":     dev.PowerState().String(),
			"SetupMode": v.SetupMode,
			"Location":  v.Location,
		})
	}
}

func formHandler(key string) fiber.Handler {
	page := formPages[key]
	return func(c *fiber.Ctx) error {
		return renderHTML(c, formTmpl, "form.html", page)
	}
}

func frameHandler(dev deviceAPI) fiber.Handler {
	return func(c *fiber.Ctx) error {
		frame := dev.Frame()
		if frame == nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("No frame available")
		}
		data, err := encodePNG(frame)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to encode image")
		}
		c.Set("Content-Type", "image/png")
		c.Set("Content-Length", strconv.Itoa(len(data)))
		return c.Send(data)
	}
}

type statusResponse struct {
	Page       string  `json:"page"`
	Power      string  `json:"power"`
	SetupMode  bool    `json:"setup_mode"`
	Location   string  `json:"location"`
	BatteryMV  uint16  `json:"battery_mv"`
	UptimeSec  uint64  `json:"uptime_sec,omitempty"`
	MemUsedPct float64 `json:"mem_used_pct,omitempty"`
}

func statusHandler(dev deviceAPI) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := dev.View()
		resp := statusResponse{
			Page:      v.Page.String(),
			Power:     dev.PowerState().String(),
			SetupMode: v.SetupMode,
			Location:  v.Location,
			BatteryMV: v.BatteryRaw,
		}
		ctx := c.UserContext()
		if up, err := host.UptimeWithContext(ctx); err == nil {
			resp.UptimeSec = up
		}
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			resp.MemUsedPct = vm.UsedPercent
		}
		return c.JSON(resp)
	}
}

func faviconHandler(c *fiber.Ctx) error {
	c.Set("Content-Type", "image/svg+xml")
	c.Set("Cache-Control", "public, max-age=86400")
	return c.Send(faviconSVG())
}

// saveHandler decodes a settings record, validates it and queues its save
// command. The record is persisted by the dispatch loop, not here.
func saveHandler[T settings.Record](dev deviceAPI) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if err := validateJSON(body); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON")
		}
		if err := rec.Validate(); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).SendString(err.Error())
		}
		cmd, err := command.FromRecord(rec)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), sendTimeout)
		defer cancel()
		if err := dev.Sender().Send(ctx, cmd); err != nil {
			slog.Warn("Command not queued", logfields.Command(cmd.Kind()), logfields.Error(err))
			if errors.Is(err, context.DeadlineExceeded) {
				return c.Status(fiber.StatusServiceUnavailable).SendString("Device busy, try again")
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		slog.Info("Settings received", logfields.Key(rec.Key()))
		return c.SendString("Gespeichert!")
	}
}
